package gateway

import (
	"errors"

	"example.com/gkg/tripexpo/internal/store"
)

// Collection names.
const (
	Blogs    = store.BlogsCollection
	Users    = store.UsersCollection
	Reviews  = store.ReviewsCollection
	Tips     = store.TipsCollection
	Products = store.ProductsCollection
	Views    = store.ViewsCollection
)

// Field names the handlers key on.
const (
	BlogStatusField   = "blogStatus"
	BlogRatingField   = store.BlogRatingField
	BlogCategoryField = store.BlogCategoryField
	BlogCostField     = "blogCost"
	EmailField        = store.EmailField
	RoleField         = "role"
	AdminRole         = "admin"
)

var (
	ErrBadPage     = errors.New("bad page")
	ErrEmptyUpdate = errors.New("empty update")
)
