package migration

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/baasworks/migration-studio/internal/backend"
	"github.com/baasworks/migration-studio/internal/models"
)

// migrateAttributes recreates the source collection's schema on the
// destination. Scalar attributes go first; relationship attributes run as a
// second pass because they may reference sibling collections that did not
// exist during pass one. Per-attribute failures log and continue.
func (e *Executor) migrateAttributes(ctx context.Context, dbRes, colRes *models.MigrationResource) error {
	attrs, err := e.src.ListAttributes(dbRes.SourceID, colRes.SourceID)
	if err != nil {
		e.log(fmt.Sprintf("    FAIL: attributes of %s: %v", colRes.SourceName, err))
		return nil
	}

	existing := map[string]bool{}
	if dstAttrs, err := e.dst.ListAttributes(dbRes.TargetID, colRes.TargetID); err == nil {
		for _, a := range dstAttrs {
			existing[a.Key] = true
		}
	}

	var scalars, relationships []backend.Attribute
	for _, a := range attrs {
		if a.IsRelationship() {
			relationships = append(relationships, a)
		} else {
			scalars = append(scalars, a)
		}
	}

	for _, pass := range [][]backend.Attribute{scalars, relationships} {
		for _, a := range pass {
			if err := e.checkStop(ctx); err != nil {
				return err
			}
			if existing[a.Key] {
				e.log(fmt.Sprintf("      SKIP (exists): attribute %s", a.Key))
				continue
			}
			sanitized := sanitizeAttribute(a)
			err := e.dst.CreateAttribute(dbRes.TargetID, colRes.TargetID, sanitized)
			if err != nil && !backend.IsConflict(err) {
				e.log(fmt.Sprintf("      FAIL: attribute %s: %v", a.Key, err))
				continue
			}
			e.log(fmt.Sprintf("      CREATED: attribute %s (%s)", a.Key, a.Type))
		}
	}
	return nil
}

// migrateIndexes recreates the source collection's indexes. Runs only after
// both attribute passes so every referenced attribute exists.
func (e *Executor) migrateIndexes(ctx context.Context, dbRes, colRes *models.MigrationResource) error {
	indexes, err := e.src.ListIndexes(dbRes.SourceID, colRes.SourceID)
	if err != nil {
		e.log(fmt.Sprintf("    FAIL: indexes of %s: %v", colRes.SourceName, err))
		return nil
	}

	existing := map[string]bool{}
	if dstIdx, err := e.dst.ListIndexes(dbRes.TargetID, colRes.TargetID); err == nil {
		for _, idx := range dstIdx {
			existing[idx.Key] = true
		}
	}

	for _, idx := range indexes {
		if err := e.checkStop(ctx); err != nil {
			return err
		}
		if existing[idx.Key] {
			e.log(fmt.Sprintf("      SKIP (exists): index %s", idx.Key))
			continue
		}
		err := e.dst.CreateIndex(dbRes.TargetID, colRes.TargetID, idx)
		if err != nil && !backend.IsConflict(err) {
			e.log(fmt.Sprintf("      FAIL: index %s: %v", idx.Key, err))
			continue
		}
		e.log(fmt.Sprintf("      CREATED: index %s", idx.Key))
	}
	return nil
}

// sanitizeAttribute coerces integer/float bounds and defaults to finite
// numbers. Source metadata may carry sentinel strings or out-of-band values;
// an unusable constraint is dropped rather than aborting the attribute.
func sanitizeAttribute(a backend.Attribute) backend.Attribute {
	kind, err := a.Kind()
	if err != nil {
		return a
	}
	switch kind {
	case backend.AttrInteger:
		a.Min = coerceInt(a.Min)
		a.Max = coerceInt(a.Max)
		a.Default = coerceInt(a.Default)
	case backend.AttrFloat:
		a.Min = coerceFloat(a.Min)
		a.Max = coerceFloat(a.Max)
		a.Default = coerceFloat(a.Default)
	}
	return a
}

// coerceInt returns v as an int64, or nil if it cannot be represented as a
// finite integer.
func coerceInt(v interface{}) interface{} {
	f, ok := toFinite(v)
	if !ok {
		return nil
	}
	return int64(f)
}

// coerceFloat returns v as a float64, or nil if it is not a finite number.
func coerceFloat(v interface{}) interface{} {
	f, ok := toFinite(v)
	if !ok {
		return nil
	}
	return f
}

func toFinite(v interface{}) (float64, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
