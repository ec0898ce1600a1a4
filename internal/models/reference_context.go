package models

// PersistedOwner marks entries that came from previously persisted data.
const PersistedOwner = -1

// ReferenceContext is the running lookup state of one batch.
//
// It is mutated while the batch is validated: a row whose id or identity is
// unique claims it, so later rows in the same batch are checked against it.
// Re-validating a row releases that row's claims first.
type ReferenceContext struct {
	ItemTypes map[string]ItemType `json:"item_types"`
	IDs       map[string]int      `json:"ids"`
	Keys      map[string]int      `json:"keys"`
}

func NewReferenceContext(itemTypes map[string]ItemType) *ReferenceContext {
	if itemTypes == nil {
		itemTypes = map[string]ItemType{}
	}
	return &ReferenceContext{
		ItemTypes: itemTypes,
		IDs:       map[string]int{},
		Keys:      map[string]int{},
	}
}

func (rc *ReferenceContext) HasID(id string) bool {
	_, ok := rc.IDs[id]
	return ok
}

func (rc *ReferenceContext) HasKey(key string) bool {
	_, ok := rc.Keys[key]
	return ok
}

// ClaimID records id for owner unless it is already taken.
func (rc *ReferenceContext) ClaimID(id string, owner int) bool {
	if rc.HasID(id) {
		return false
	}
	rc.IDs[id] = owner
	return true
}

func (rc *ReferenceContext) ClaimKey(key string, owner int) bool {
	if rc.HasKey(key) {
		return false
	}
	rc.Keys[key] = owner
	return true
}

// Release drops every claim held by owner. Persisted entries are never released.
func (rc *ReferenceContext) Release(owner int) {
	if owner == PersistedOwner {
		return
	}
	for id, o := range rc.IDs {
		if o == owner {
			delete(rc.IDs, id)
		}
	}
	for key, o := range rc.Keys {
		if o == owner {
			delete(rc.Keys, key)
		}
	}
}

func (rc *ReferenceContext) TypeOf(id string) (ItemType, bool) {
	t, ok := rc.ItemTypes[id]
	return t, ok
}
