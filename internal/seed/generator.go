// Package seed generates and loads the synthetic shop dataset.
package seed

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/electwix/shoplab/internal/profile"
	"github.com/electwix/shoplab/internal/store"
)

// Generator draws synthetic rows from a profile. Every draw flows through a
// single seeded stream in a fixed order, so equal (seed, counts, profile)
// inputs reproduce identical tables.
type Generator struct {
	rng        *rand.Rand
	prof       profile.Profile
	cities     pool
	categories pool
	statuses   pool
	amounts    distuv.LogNormal
}

// pool samples weighted categorical values.
type pool struct {
	values []string
	dist   distuv.Categorical
}

func newPool(items []profile.WeightedValue, src rand.Source) pool {
	values, weights := profile.Split(items)
	return pool{values: values, dist: distuv.NewCategorical(weights, src)}
}

func (p pool) draw() string {
	return p.values[int(p.dist.Rand())]
}

// NewGenerator builds a generator seeded with seed.
func NewGenerator(prof profile.Profile, seed uint64) *Generator {
	rng := rand.New(rand.NewSource(seed))
	return &Generator{
		rng:        rng,
		prof:       prof,
		cities:     newPool(prof.Cities, rng),
		categories: newPool(prof.Categories, rng),
		statuses:   newPool(prof.Statuses, rng),
		amounts:    distuv.LogNormal{Mu: prof.Amount.Mu, Sigma: prof.Amount.Sigma, Src: rng},
	}
}

// Customers generates n customers with ids 1..n. Fields are drawn column-wise:
// first names, last names, cities, then signup offsets. A non-positive n
// yields no customers.
func (g *Generator) Customers(n int) []store.Customer {
	if n <= 0 {
		return nil
	}
	firsts := make([]string, n)
	for i := range firsts {
		firsts[i] = g.prof.FirstNames[g.rng.Intn(len(g.prof.FirstNames))]
	}
	lasts := make([]string, n)
	for i := range lasts {
		lasts[i] = g.prof.LastNames[g.rng.Intn(len(g.prof.LastNames))]
	}
	cities := make([]string, n)
	for i := range cities {
		cities[i] = g.cities.draw()
	}
	signups := make([]int, n)
	for i := range signups {
		signups[i] = g.rng.Intn(g.prof.Signup.Days)
	}

	customers := make([]store.Customer, n)
	for i := range customers {
		customers[i] = store.Customer{
			ID:         int64(i + 1),
			FirstName:  firsts[i],
			LastName:   lasts[i],
			Email:      fmt.Sprintf("user%d@%s", i, g.prof.EmailDomain),
			City:       cities[i],
			SignupDate: g.prof.Signup.Start.AddDate(0, 0, signups[i]),
		}
	}
	return customers
}

// Orders generates n orders with ids 1..n referencing customers 1..nCustomers.
// Date offsets and amounts are drawn column-wise, then customer id, category,
// and status per row. A non-positive n yields no orders; when n is positive,
// nCustomers must be at least 1.
func (g *Generator) Orders(n, nCustomers int) []store.Order {
	if n <= 0 {
		return nil
	}
	if nCustomers < 1 {
		panic("seed: orders require at least one customer")
	}
	offsets := make([]int, n)
	for i := range offsets {
		offsets[i] = g.rng.Intn(g.prof.Orders.Days)
	}
	amounts := make([]decimal.Decimal, n)
	for i := range amounts {
		amounts[i] = decimal.NewFromFloat(g.amounts.Rand()).Round(2)
	}

	orders := make([]store.Order, n)
	for i := range orders {
		orders[i] = store.Order{
			ID:         int64(i + 1),
			CustomerID: int64(1 + g.rng.Intn(nCustomers)),
			OrderDate:  g.prof.Orders.Start.AddDate(0, 0, offsets[i]),
			Category:   g.categories.draw(),
			Amount:     amounts[i],
			Status:     store.Status(g.statuses.draw()),
		}
	}
	return orders
}
