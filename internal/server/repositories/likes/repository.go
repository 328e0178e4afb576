package likes

import "context"

type Repository interface {
	// Delete removes the (user, post) like and reports whether a row existed.
	Delete(ctx context.Context, userID, postID int64) (bool, error)
	// Insert adds the (user, post) like. A concurrent duplicate yields
	// common.ErrorConflict, an unknown post common.ErrorNotFound.
	Insert(ctx context.Context, userID, postID int64) error
	Count(ctx context.Context, postID int64) (int64, error)
}
