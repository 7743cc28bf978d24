package memory

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type match struct {
	index int
	doc   bson.M
	raw   bson.Raw
}

// query returns the matching documents in sort order, windowed by skip/limit
func (c *collection) query(filter interface{}, opts *options.FindOptions) ([]match, error) {
	f, err := toM(filter)
	if err != nil {
		return nil, err
	}

	var out []match
	for i, raw := range c.db.collections[c.name] {
		doc, err := decode(raw)
		if err != nil {
			return nil, err
		}
		if matches(doc, f) {
			out = append(out, match{index: i, doc: doc, raw: raw})
		}
	}
	if opts == nil {
		return out, nil
	}

	if opts.Sort != nil {
		keys, err := sortKeys(opts.Sort)
		if err != nil {
			return nil, err
		}
		sort.SliceStable(out, func(i, j int) bool {
			for _, k := range keys {
				a, _ := lookup(out[i].doc, k.Key)
				b, _ := lookup(out[j].doc, k.Key)
				if r := compare(a, b); r != 0 {
					return r*k.dir < 0
				}
			}
			return false
		})
	}
	if opts.Skip != nil {
		skip := int(*opts.Skip)
		if skip >= len(out) {
			return nil, nil
		}
		out = out[skip:]
	}
	if opts.Limit != nil && *opts.Limit > 0 && int(*opts.Limit) < len(out) {
		out = out[:*opts.Limit]
	}
	return out, nil
}

type sortKey struct {
	Key string
	dir int
}

func sortKeys(order interface{}) ([]sortKey, error) {
	var d bson.D
	switch s := order.(type) {
	case bson.D:
		d = s
	case bson.M:
		if len(s) > 1 {
			return nil, errors.New("sort document with several keys must be ordered")
		}
		for k, v := range s {
			d = append(d, bson.E{Key: k, Value: v})
		}
	default:
		return nil, fmt.Errorf("unsupported sort order %T", order)
	}

	keys := make([]sortKey, 0, len(d))
	for _, e := range d {
		dir := 1
		if n, ok := number(e.Value); ok && n < 0 {
			dir = -1
		}
		keys = append(keys, sortKey{Key: e.Key, dir: dir})
	}
	return keys, nil
}

// toM round-trips v through BSON so filters, updates and stored documents
// share the same value types
func toM(v interface{}) (bson.M, error) {
	if v == nil {
		return bson.M{}, nil
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	return decode(raw)
}

func decode(raw bson.Raw) (bson.M, error) {
	doc := bson.M{}
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	return doc, nil
}

func matches(doc, filter bson.M) bool {
	for field, cond := range filter {
		v, present := lookup(doc, field)
		if ops, ok := cond.(bson.M); ok && isOperator(ops) {
			if !matchOperators(v, present, ops) {
				return false
			}
			continue
		}
		if !present {
			if cond != nil {
				return false
			}
			continue
		}
		if !equal(v, cond) {
			return false
		}
	}
	return true
}

func isOperator(m bson.M) bool {
	for k := range m {
		if strings.HasPrefix(k, "$") {
			return true
		}
	}
	return false
}

func matchOperators(v interface{}, present bool, ops bson.M) bool {
	for op, arg := range ops {
		switch op {
		case "$in":
			if !present || !contains(arg, v) {
				return false
			}
		case "$nin":
			if present && contains(arg, v) {
				return false
			}
		case "$ne":
			if present && equal(v, arg) {
				return false
			}
		case "$exists":
			want, _ := arg.(bool)
			if present != want {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func contains(list interface{}, v interface{}) bool {
	arr, ok := list.(bson.A)
	if !ok {
		return false
	}
	for _, item := range arr {
		if equal(item, v) {
			return true
		}
	}
	return false
}

// lookup resolves a dotted path
func lookup(doc bson.M, path string) (interface{}, bool) {
	var cur interface{} = doc
	for _, part := range strings.Split(path, ".") {
		m, ok := cur.(bson.M)
		if !ok {
			return nil, false
		}
		cur, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func equal(a, b interface{}) bool {
	if x, ok := number(a); ok {
		if y, ok := number(b); ok {
			return x == y
		}
	}
	return reflect.DeepEqual(a, b)
}

func number(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// rank follows the MongoDB cross-type comparison order
func rank(v interface{}) int {
	if _, ok := number(v); ok {
		return 2
	}
	switch v.(type) {
	case nil:
		return 1
	case string:
		return 3
	case bson.M:
		return 4
	case bson.A:
		return 5
	case primitive.Binary:
		return 6
	case primitive.ObjectID:
		return 7
	case bool:
		return 8
	case primitive.DateTime:
		return 9
	}
	return 10
}

func compare(a, b interface{}) int {
	ra, rb := rank(a), rank(b)
	if ra != rb {
		return ra - rb
	}
	switch x := a.(type) {
	case string:
		return strings.Compare(x, b.(string))
	case primitive.ObjectID:
		y := b.(primitive.ObjectID)
		return bytes.Compare(x[:], y[:])
	case primitive.DateTime:
		y := b.(primitive.DateTime)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
		return 0
	case bool:
		y := b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		}
		return 1
	}
	if x, ok := number(a); ok {
		y, _ := number(b)
		switch {
		case x < y:
			return -1
		case x > y:
			return 1
		}
	}
	return 0
}

// apply runs the $set and $push operators of an update document
func apply(doc bson.M, update bson.M) error {
	for op, arg := range update {
		fields, ok := arg.(bson.M)
		if !ok {
			return fmt.Errorf("%s: expected a document, got %T", op, arg)
		}
		switch op {
		case "$set":
			for k, v := range fields {
				doc[k] = v
			}
		case "$push":
			for k, v := range fields {
				var arr bson.A
				if existing, ok := doc[k]; ok && existing != nil {
					arr, ok = existing.(bson.A)
					if !ok {
						return fmt.Errorf("$push: field %s is not an array", k)
					}
				}
				doc[k] = append(arr, v)
			}
		default:
			return fmt.Errorf("unsupported update operator %s", op)
		}
	}
	return nil
}

type cursor struct {
	docs []bson.Raw
}

// All decodes every document into results, which must point at a slice
func (c *cursor) All(_ context.Context, results interface{}) error {
	rv := reflect.ValueOf(results)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Slice {
		return fmt.Errorf("results argument must be a pointer to a slice, got %T", results)
	}
	slice := rv.Elem()
	elemType := slice.Type().Elem()
	out := reflect.MakeSlice(slice.Type(), 0, len(c.docs))
	for _, raw := range c.docs {
		elem := reflect.New(elemType)
		if err := bson.Unmarshal(raw, elem.Interface()); err != nil {
			return err
		}
		out = reflect.Append(out, elem.Elem())
	}
	slice.Set(out)
	return nil
}

func (c *cursor) Close(context.Context) error {
	return nil
}
