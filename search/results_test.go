package search

import (
	"testing"

	"github.com/poiesic/catscan/core"
	"github.com/stretchr/testify/assert"
)

func TestResultSet(t *testing.T) {
	a := &core.CompanyPage{Page: page(7, "Acme")}
	b := &core.ProductPage{Page: page(8, "Acme Phone")}
	c := &core.IncidentPage{Page: page(9, "Acme outage")}

	t.Run("preserves insertion order", func(t *testing.T) {
		r := NewResultSet(b, a)
		r.Add(c)
		assert.Equal(t, []core.ID{8, 7, 9}, r.IDs())
		assert.Equal(t, 3, r.Len())
	})

	t.Run("merge appends duplicates", func(t *testing.T) {
		r := NewResultSet(a, b)
		r.Merge(NewResultSet(c, a))
		r.Merge(nil)
		assert.Equal(t, []core.ID{7, 8, 9, 7}, r.IDs())
	})

	t.Run("unique keeps first occurrence", func(t *testing.T) {
		r := NewResultSet(b, a, b, c, a)
		unique := r.Unique()
		assert.Equal(t, []core.ID{8, 7, 9}, unique.IDs())
		assert.Equal(t, 5, r.Len(), "unique must not modify the receiver")
	})

	t.Run("nil entries ignored", func(t *testing.T) {
		r := NewResultSet(nil, a)
		assert.Equal(t, []core.ID{7}, r.IDs())
	})

	t.Run("filter", func(t *testing.T) {
		r := NewResultSet(a, b, c)
		filtered := r.Filter(func(e core.Entry) bool { return e.ArticleType() != core.ArticleTypeIncident })
		assert.Equal(t, []core.ID{7, 8}, filtered.IDs())
	})

	t.Run("nil receiver is empty", func(t *testing.T) {
		var r *ResultSet
		assert.True(t, r.Empty())
		assert.Equal(t, 0, r.Len())
		assert.Empty(t, r.IDs())
	})
}
