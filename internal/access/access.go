package access

import (
	"errors"

	"gxcoin/internal/schema"
)

var (
	ErrNotAuthorized = errors.New("caller is not authorized")
	ErrSelfRemoval   = errors.New("members cannot remove themselves")
	ErrNilAccount    = errors.New("null account")
)

type set map[schema.Account]struct{}

func (s set) add(account schema.Account)    { s[account] = struct{}{} }
func (s set) remove(account schema.Account) { delete(s, account) }
func (s set) contains(account schema.Account) bool {
	_, ok := s[account]
	return ok
}

// DeploymentAdmins is the root allow-list. Members manage the membership;
// a member can never remove itself, so the list cannot become empty.
type DeploymentAdmins struct {
	members set
}

// NewDeploymentAdmins creates the list with the creating account as its
// first member.
func NewDeploymentAdmins(creator schema.Account) *DeploymentAdmins {
	members := make(set)
	members.add(creator)
	return &DeploymentAdmins{members: members}
}

// Add grants membership. Only existing members may call it.
func (d *DeploymentAdmins) Add(caller, account schema.Account) error {
	if !d.members.contains(caller) {
		return ErrNotAuthorized
	}
	if account == schema.AccountNil {
		return ErrNilAccount
	}
	d.members.add(account)
	return nil
}

// Remove revokes membership. Members cannot remove themselves.
func (d *DeploymentAdmins) Remove(caller, account schema.Account) error {
	if !d.members.contains(caller) {
		return ErrNotAuthorized
	}
	if caller == account {
		return ErrSelfRemoval
	}
	d.members.remove(account)
	return nil
}

// Contains reports membership.
func (d *DeploymentAdmins) Contains(account schema.Account) bool {
	return d.members.contains(account)
}

// Admins is the operational admin allow-list. Mutations are gated on
// deployment-admin membership, so an admin cannot add or remove admins
// unless it is also a deployment admin.
type Admins struct {
	deployment *DeploymentAdmins
	members    set
}

// NewAdmins creates an empty admin list governed by deployment.
func NewAdmins(deployment *DeploymentAdmins) *Admins {
	return &Admins{deployment: deployment, members: make(set)}
}

// Add grants admin rights. Caller must be a deployment admin.
func (a *Admins) Add(caller, account schema.Account) error {
	if !a.deployment.Contains(caller) {
		return ErrNotAuthorized
	}
	if account == schema.AccountNil {
		return ErrNilAccount
	}
	a.members.add(account)
	return nil
}

// Remove revokes admin rights. Caller must be a deployment admin and may
// not remove itself.
func (a *Admins) Remove(caller, account schema.Account) error {
	if !a.deployment.Contains(caller) {
		return ErrNotAuthorized
	}
	if caller == account {
		return ErrSelfRemoval
	}
	a.members.remove(account)
	return nil
}

// Contains reports admin membership.
func (a *Admins) Contains(account schema.Account) bool {
	return a.members.contains(account)
}

// Owners is a per-component mutation allow-list. Each gated component (a
// book side, the event sink) holds its own list; only deployment admins
// manage it.
type Owners struct {
	deployment *DeploymentAdmins
	members    set
}

// NewOwners creates an empty owner list governed by deployment.
func NewOwners(deployment *DeploymentAdmins) *Owners {
	return &Owners{deployment: deployment, members: make(set)}
}

// AddOwner authorizes account to mutate the owning component.
func (o *Owners) AddOwner(caller, account schema.Account) error {
	if !o.deployment.Contains(caller) {
		return ErrNotAuthorized
	}
	if account == schema.AccountNil {
		return ErrNilAccount
	}
	o.members.add(account)
	return nil
}

// RemoveOwner revokes authorization.
func (o *Owners) RemoveOwner(caller, account schema.Account) error {
	if !o.deployment.Contains(caller) {
		return ErrNotAuthorized
	}
	o.members.remove(account)
	return nil
}

// IsOwner reports whether account may mutate the owning component.
func (o *Owners) IsOwner(account schema.Account) bool {
	return o.members.contains(account)
}
