package mutate

import (
	"strings"

	"associate-os/internal/model"
)

func AddResource(doc model.AppData, r model.Resource) (model.AppData, error) {
	r.ID = strings.TrimSpace(r.ID)
	r.Name = strings.TrimSpace(r.Name)
	if r.ID == "" {
		return doc, ErrEmptyID
	}
	if r.Name == "" {
		return doc, ErrEmptyTitle
	}
	if _, ok := model.ParseResourceType(string(r.Type)); !ok {
		return doc, ErrInvalidType
	}
	if _, idx := doc.FindResource(r.ID); idx >= 0 {
		return doc, DuplicateIDError{Kind: "resource", ID: r.ID}
	}
	resources := make([]model.Resource, 0, len(doc.Resources)+1)
	resources = append(resources, doc.Resources...)
	doc.Resources = append(resources, r)
	return doc, nil
}

type ResourcePatch struct {
	Type       *model.ResourceType
	Name       *string
	Identifier *string
	Address    *string
	Notes      *string
}

func UpdateResource(doc model.AppData, resourceID string, p ResourcePatch) (model.AppData, error) {
	r, idx := doc.FindResource(strings.TrimSpace(resourceID))
	if idx < 0 {
		return doc, nil
	}
	if p.Type != nil {
		if _, ok := model.ParseResourceType(string(*p.Type)); !ok {
			return doc, ErrInvalidType
		}
		r.Type = *p.Type
	}
	if p.Name != nil {
		if strings.TrimSpace(*p.Name) == "" {
			return doc, ErrEmptyTitle
		}
		r.Name = strings.TrimSpace(*p.Name)
	}
	if p.Identifier != nil {
		r.Identifier = strings.TrimSpace(*p.Identifier)
	}
	if p.Address != nil {
		r.Address = strings.TrimSpace(*p.Address)
	}
	if p.Notes != nil {
		r.Notes = *p.Notes
	}
	resources := make([]model.Resource, len(doc.Resources))
	copy(resources, doc.Resources)
	resources[idx] = r
	doc.Resources = resources
	return doc, nil
}

func DeleteResource(doc model.AppData, resourceID string) (model.AppData, error) {
	_, idx := doc.FindResource(strings.TrimSpace(resourceID))
	if idx < 0 {
		return doc, nil
	}
	resources := make([]model.Resource, 0, len(doc.Resources)-1)
	resources = append(resources, doc.Resources[:idx]...)
	doc.Resources = append(resources, doc.Resources[idx+1:]...)
	return doc, nil
}
