package services

import (
	"math/rand"
	"sync"

	"vidmatch_server/models"
)

// FakeUserService hands out synthetic counterparts, avoiding repeats
// within a usage epoch. When the whole catalog has been consumed the
// used-set resets, so selection always succeeds.
type FakeUserService struct {
	mu      sync.Mutex
	catalog []models.FakeUser
	used    map[string]struct{}
}

func NewFakeUserService(catalog []models.FakeUser) *FakeUserService {
	if len(catalog) == 0 {
		catalog = models.FakeUsers
	}
	return &FakeUserService{
		catalog: catalog,
		used:    make(map[string]struct{}),
	}
}

// Pick selects a random unused counterpart from the catalog.
func (fs *FakeUserService) Pick() models.FakeUser {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	available := make([]models.FakeUser, 0, len(fs.catalog))
	for _, u := range fs.catalog {
		if _, taken := fs.used[u.ID]; !taken {
			available = append(available, u)
		}
	}

	// All counterparts used: start a new epoch
	if len(available) == 0 {
		fs.used = make(map[string]struct{})
		available = fs.catalog
	}

	pick := available[rand.Intn(len(available))]
	fs.used[pick.ID] = struct{}{}
	return pick
}
