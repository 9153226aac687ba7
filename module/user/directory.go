// Package user is the identity collaborator surface: the DM domain only
// needs to know whether a peer exists.
package user

import "context"

type Directory interface {
	UserExists(ctx context.Context, id string) (bool, error)
}
