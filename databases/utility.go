package databases

import (
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Page is a simple offset/limit window over a sorted query
type Page struct {
	Skip  int64
	Limit int64
}

// FindOptions returns the find options for the page sorted by the given keys
func (p Page) FindOptions(sort bson.D) *options.FindOptions {
	opts := options.Find().SetSort(sort)
	if p.Skip > 0 {
		opts.SetSkip(p.Skip)
	}
	if p.Limit > 0 {
		opts.SetLimit(p.Limit)
	}
	return opts
}
