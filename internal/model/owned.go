package model

// WorkspaceOwned is implemented by every entity whose visibility is scoped
// to a workspace. WorkspaceOwner returns the user ID the entity's ownership
// chain resolves to, so permission checks need no per-type switches.
type WorkspaceOwned interface {
	WorkspaceOwner() int
}
