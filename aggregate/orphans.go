package aggregate

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

// OrphanReport lists child records of one kind whose case no longer exists
type OrphanReport struct {
	Kind       string               `json:"kind"`
	Collection string               `json:"collection"`
	Cases      []primitive.ObjectID `json:"case_ids"`
	Records    int64                `json:"records"`
	Removed    int64                `json:"removed"`
}

// FindOrphans scans every child collection for case_id values that name no
// stored case. Kinds without orphans are left out.
func (c *Composer) FindOrphans(ctx context.Context) ([]OrphanReport, error) {
	reports := []OrphanReport{}
	for _, k := range Kinds {
		coll := c.children[k.Key]
		values, err := coll.Distinct(ctx, "case_id", bson.M{})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.Collection, err)
		}
		refs := make(bson.A, 0, len(values))
		for _, v := range values {
			if oid, ok := v.(primitive.ObjectID); ok {
				refs = append(refs, oid)
			}
		}
		if len(refs) == 0 {
			continue
		}

		existing, err := c.cases.Distinct(ctx, "_id", bson.M{"_id": bson.M{"$in": refs}})
		if err != nil {
			return nil, err
		}
		live := make(map[primitive.ObjectID]struct{}, len(existing))
		for _, v := range existing {
			if oid, ok := v.(primitive.ObjectID); ok {
				live[oid] = struct{}{}
			}
		}

		report := OrphanReport{Kind: k.Key, Collection: k.Collection}
		for _, r := range refs {
			oid := r.(primitive.ObjectID)
			if _, ok := live[oid]; !ok {
				report.Cases = append(report.Cases, oid)
			}
		}
		if len(report.Cases) == 0 {
			continue
		}
		report.Records, err = coll.CountDocuments(ctx, orphanFilter(report.Cases))
		if err != nil {
			return nil, fmt.Errorf("%s: %w", k.Collection, err)
		}
		reports = append(reports, report)
	}
	return reports, nil
}

// SweepOrphans removes every record FindOrphans reports
func (c *Composer) SweepOrphans(ctx context.Context) ([]OrphanReport, error) {
	reports, err := c.FindOrphans(ctx)
	if err != nil {
		return nil, err
	}
	for i, r := range reports {
		n, err := c.children[r.Kind].DeleteMany(ctx, orphanFilter(r.Cases))
		if err != nil {
			return reports, fmt.Errorf("%s: %w", r.Collection, err)
		}
		reports[i].Removed = n
		zap.S().Infow("removed orphaned records",
			"collection", r.Collection,
			"cases", len(r.Cases),
			"removed", n)
	}
	return reports, nil
}

func orphanFilter(cases []primitive.ObjectID) bson.M {
	refs := make(bson.A, len(cases))
	for i, oid := range cases {
		refs[i] = oid
	}
	return bson.M{"case_id": bson.M{"$in": refs}}
}
