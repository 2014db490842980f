package model

// Exhibition groups workshops hosted in one location. Its name is the
// identity used by passes to grant access. Workshops keep insertion
// order, which is also display order.
type Exhibition struct {
	Name      string      `cbor:"name" json:"name"`
	Location  string      `cbor:"location" json:"location"`
	Workshops []*Workshop `cbor:"workshops" json:"workshops,omitempty"`
}

// AddWorkshop appends a workshop and points it back at the exhibition.
func (e *Exhibition) AddWorkshop(w *Workshop) {
	w.ExhibitionName = e.Name
	e.Workshops = append(e.Workshops, w)
}
