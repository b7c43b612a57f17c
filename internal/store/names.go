package store

// Collection names.
const (
	BlogsCollection    = "blogs"
	UsersCollection    = "users"
	ReviewsCollection  = "reviews"
	TipsCollection     = "tips"
	ProductsCollection = "products"
	ViewsCollection    = "views"
)

// Fields that are queried often enough to be indexed.
const (
	EmailField        = "email"
	BlogRatingField   = "blogRating"
	BlogCategoryField = "blogCategory"
	ViewBlogIDField   = "blogId"
	ViewCountField    = "views"
)
