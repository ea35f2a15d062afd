package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"sync"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/GTDGit/catalog_api/internal/catalog"
	"github.com/GTDGit/catalog_api/internal/models"
	"github.com/GTDGit/catalog_api/internal/repository"
	"github.com/GTDGit/catalog_api/internal/utils"
)

// memProducts is an in-memory ProductStore keeping insertion order.
type memProducts struct {
	mu         sync.Mutex
	items      []models.Product
	createErr  error
	replaceErr error
}

func (m *memProducts) Create(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	p.ID = primitive.NewObjectID()
	m.items = append(m.items, *p)
	return nil
}

func (m *memProducts) GetByID(_ context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID.Hex() == id {
			p := m.items[i]
			return &p, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memProducts) Replace(_ context.Context, p *models.Product) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.replaceErr != nil {
		return m.replaceErr
	}
	for i := range m.items {
		if m.items[i].ID == p.ID {
			m.items[i] = *p
			return nil
		}
	}
	return utils.ErrNotFound
}

func (m *memProducts) Delete(_ context.Context, id string) (*models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID.Hex() == id {
			p := m.items[i]
			m.items = append(m.items[:i], m.items[i+1:]...)
			return &p, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memProducts) matching(spec *catalog.FilterSpec) []models.Product {
	var out []models.Product
	for i := range m.items {
		if spec.Match(&m.items[i]) {
			out = append(out, m.items[i])
		}
	}
	if spec.Sort != nil && spec.Sort.Field == "price" {
		sort.SliceStable(out, func(i, j int) bool {
			if spec.Sort.Desc {
				return out[i].Price > out[j].Price
			}
			return out[i].Price < out[j].Price
		})
	}
	return out
}

func (m *memProducts) FindMany(_ context.Context, spec *catalog.FilterSpec) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matching(spec)
	if spec.Skip >= len(all) {
		return []models.Product{}, nil
	}
	end := spec.Skip + spec.Limit
	if end > len(all) {
		end = len(all)
	}
	return append([]models.Product(nil), all[spec.Skip:end]...), nil
}

func (m *memProducts) Count(_ context.Context, spec *catalog.FilterSpec) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(spec))), nil
}

func (m *memProducts) FindByGroup(_ context.Context, groupID string) ([]models.Product, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Product
	for _, p := range m.items {
		if p.GroupID == groupID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *memProducts) CountMediaRefs(_ context.Context, url string, exclude primitive.ObjectID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		if m.items[i].ID == exclude {
			continue
		}
		for _, ref := range m.items[i].MediaRefs() {
			if ref == url {
				n++
				break
			}
		}
	}
	return n, nil
}

func (m *memProducts) PropagateColor(_ context.Context, groupID string, change catalog.ColorChange) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for i := range m.items {
		if m.items[i].GroupID != groupID {
			continue
		}
		for j := range m.items[i].Colors {
			c := &m.items[i].Colors[j]
			if c.ConnectionID == change.ConnectionID {
				c.Name, c.Image = change.Name, change.Image
				n++
				break
			}
		}
	}
	return n, nil
}

func (m *memProducts) CountAll(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}

func (m *memProducts) CountOutOfStock(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, p := range m.items {
		if p.Stock <= 0 {
			n++
		}
	}
	return n, nil
}

func (m *memProducts) CountByShape(context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	for i := range m.items {
		out[string(m.items[i].Shape())]++
	}
	return out, nil
}

func (m *memProducts) CountByCategory(context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	for _, p := range m.items {
		out[p.Category]++
	}
	return out, nil
}

// fakeMedia records uploads and deletes.
type fakeMedia struct {
	mu        sync.Mutex
	seq       int
	uploaded  []string
	deleted   []string
	deleteErr error
	failOn    string
}

func (f *fakeMedia) Upload(_ context.Context, filename string, body io.Reader, _ string) (string, error) {
	_, _ = io.Copy(io.Discard, body)
	f.mu.Lock()
	defer f.mu.Unlock()
	if filename == f.failOn {
		return "", errors.New("upload failed")
	}
	f.seq++
	u := fmt.Sprintf("https://cdn.example.com/%d-%s", f.seq, filename)
	f.uploaded = append(f.uploaded, u)
	return u, nil
}

func (f *fakeMedia) Delete(_ context.Context, urls []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, urls...)
	return nil
}

type fakeQueue struct {
	pushed []string
}

func (q *fakeQueue) Push(_ context.Context, urls ...string) error {
	q.pushed = append(q.pushed, urls...)
	return nil
}

type fakeInvalidator struct {
	calls int
}

func (f *fakeInvalidator) Invalidate(context.Context, ...string) error {
	f.calls++
	return nil
}

// memOrders is an in-memory OrderStore and OrderStats.
type memOrders struct {
	mu    sync.Mutex
	items []models.Order
}

func (m *memOrders) Create(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	o.ID = primitive.NewObjectID()
	m.items = append(m.items, *o)
	return nil
}

func (m *memOrders) GetByID(_ context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID.Hex() == id {
			o := m.items[i]
			return &o, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memOrders) Replace(_ context.Context, o *models.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID == o.ID {
			m.items[i] = *o
			return nil
		}
	}
	return utils.ErrNotFound
}

func (m *memOrders) Delete(_ context.Context, id string) (*models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.items {
		if m.items[i].ID.Hex() == id {
			o := m.items[i]
			m.items = append(m.items[:i], m.items[i+1:]...)
			return &o, nil
		}
	}
	return nil, utils.ErrNotFound
}

func (m *memOrders) matching(q repository.OrderQuery) []models.Order {
	var out []models.Order
	for _, o := range m.items {
		if q.Status != "" && o.Status != q.Status {
			continue
		}
		if !q.UserID.IsZero() && o.UserID != q.UserID {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (m *memOrders) Find(_ context.Context, q repository.OrderQuery) ([]models.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	all := m.matching(q)
	if q.Sort != nil && q.Sort.Field == "total" {
		sort.SliceStable(all, func(i, j int) bool {
			if q.Sort.Desc {
				return all[i].Total > all[j].Total
			}
			return all[i].Total < all[j].Total
		})
	}
	if q.Skip >= len(all) {
		return []models.Order{}, nil
	}
	end := q.Skip + q.Limit
	if end > len(all) {
		end = len(all)
	}
	return all[q.Skip:end], nil
}

func (m *memOrders) Count(_ context.Context, q repository.OrderQuery) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.matching(q))), nil
}

func (m *memOrders) CountByStatus(context.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := map[string]int64{}
	for _, o := range m.items {
		out[string(o.Status)]++
	}
	return out, nil
}

func (m *memOrders) DeliveredRevenue(context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total float64
	for _, o := range m.items {
		if o.Status == models.OrderDelivered {
			total += o.Total
		}
	}
	return total, nil
}
