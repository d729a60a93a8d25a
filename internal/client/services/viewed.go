package services

import (
	"sync"

	"github.com/dmitrijs2005/staffdesk/internal/client/models"
)

// ViewedProfile holds the one profile currently on screen. Last writer wins.
type ViewedProfile struct {
	mu sync.RWMutex
	p  *models.EmployeeProfile
}

func NewViewedProfile() *ViewedProfile { return &ViewedProfile{} }

func (v *ViewedProfile) Get() (models.EmployeeProfile, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	if v.p == nil {
		return models.EmployeeProfile{}, false
	}
	return *v.p, true
}

func (v *ViewedProfile) Set(p models.EmployeeProfile) {
	v.mu.Lock()
	v.p = &p
	v.mu.Unlock()
}

func (v *ViewedProfile) Clear() {
	v.mu.Lock()
	v.p = nil
	v.mu.Unlock()
}

// update applies fn to the viewed profile if it is the one with id, or to
// a profile holding only id otherwise, and stores the result.
func (v *ViewedProfile) update(id models.ID, fn func(p *models.EmployeeProfile)) models.EmployeeProfile {
	v.mu.Lock()
	defer v.mu.Unlock()

	p := models.EmployeeProfile{ID: id}
	if v.p != nil && v.p.ID == id {
		p = *v.p
	}
	fn(&p)
	v.p = &p
	return p
}
