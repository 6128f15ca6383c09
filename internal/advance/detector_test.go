package advance_test

import (
	"testing"

	"go-payroll/internal/advance"

	"github.com/stretchr/testify/assert"
)

func TestNeedsAdvanceWhenFunderDiffersFromHomeOrg(t *testing.T) {
	assert.True(t, advance.NeedsAdvance("SMRU", "BHF"))
	assert.True(t, advance.NeedsAdvance("BHF", "SMRU"))
}

func TestNoAdvanceForSameOrganization(t *testing.T) {
	assert.False(t, advance.NeedsAdvance("SMRU", "SMRU"))
}

func TestNoAdvanceIsCaseAndSpaceInsensitive(t *testing.T) {
	assert.False(t, advance.NeedsAdvance("smru", "SMRU"))
	assert.False(t, advance.NeedsAdvance(" SMRU ", "SMRU"))
}

func TestNoAdvanceWhenEitherOrganizationUnknown(t *testing.T) {
	assert.False(t, advance.NeedsAdvance("", "BHF"))
	assert.False(t, advance.NeedsAdvance("SMRU", ""))
	assert.False(t, advance.NeedsAdvance("", ""))
}
