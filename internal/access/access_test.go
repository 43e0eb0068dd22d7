package access

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploymentAdminsMembership(t *testing.T) {
	d := NewDeploymentAdmins("creator")
	assert.True(t, d.Contains("creator"))

	require.NoError(t, d.Add("creator", "second"))
	assert.True(t, d.Contains("second"))

	err := d.Add("outsider", "third")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.False(t, d.Contains("third"))

	err = d.Add("creator", "")
	assert.ErrorIs(t, err, ErrNilAccount)

	require.NoError(t, d.Remove("second", "creator"))
	assert.False(t, d.Contains("creator"))
}

func TestDeploymentAdminsRefuseSelfRemoval(t *testing.T) {
	d := NewDeploymentAdmins("creator")
	err := d.Remove("creator", "creator")
	assert.ErrorIs(t, err, ErrSelfRemoval)
	assert.True(t, d.Contains("creator"))
}

func TestAdminsGatedOnDeploymentMembership(t *testing.T) {
	d := NewDeploymentAdmins("creator")
	a := NewAdmins(d)

	require.NoError(t, a.Add("creator", "op"))
	assert.True(t, a.Contains("op"))

	// Being an admin does not grant the right to manage admins.
	err := a.Add("op", "another")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	err = a.Remove("op", "op")
	assert.ErrorIs(t, err, ErrNotAuthorized)

	require.NoError(t, a.Remove("creator", "op"))
	assert.False(t, a.Contains("op"))
}

func TestOwnersGatedOnDeploymentMembership(t *testing.T) {
	d := NewDeploymentAdmins("creator")
	o := NewOwners(d)

	require.NoError(t, o.AddOwner("creator", "component"))
	assert.True(t, o.IsOwner("component"))

	err := o.AddOwner("component", "other")
	assert.ErrorIs(t, err, ErrNotAuthorized)
	assert.False(t, o.IsOwner("other"))

	require.NoError(t, o.RemoveOwner("creator", "component"))
	assert.False(t, o.IsOwner("component"))
}
