package models

import (
	"strings"
	"time"

	"dukaan/identity"

	"go.mongodb.org/mongo-driver/bson"
)

type Shop struct {
	ID          identity.ID `json:"_id" bson:"_id,omitempty"`
	Name        string      `json:"name" bson:"name"`
	OwnerMobile string      `json:"owner_mobile" bson:"owner_mobile"`
	Category    string      `json:"category" bson:"category"`
	OpeningTime string      `json:"opening_time,omitempty" bson:"opening_time,omitempty"`
	ClosingTime string      `json:"closing_time,omitempty" bson:"closing_time,omitempty"`
	ImageURL    string      `json:"image_url,omitempty" bson:"image_url,omitempty"`
	Address     string      `json:"address,omitempty" bson:"address,omitempty"`
	IsOpen      bool        `json:"is_open" bson:"-"`
}

// ShopContact is what checkout hands back so the buyer can reach the shop.
type ShopContact struct {
	ShopID      identity.ID `json:"shop_id"`
	Name        string      `json:"name"`
	OwnerMobile string      `json:"owner_mobile"`
	Address     string      `json:"address,omitempty"`
}

func (s *Shop) Contact() ShopContact {
	return ShopContact{ShopID: s.ID, Name: s.Name, OwnerMobile: s.OwnerMobile, Address: s.Address}
}

// OpenAt reports whether t falls inside the shop's "9:00 AM"-style hours.
// Shops without parseable hours are always open.
func (s *Shop) OpenAt(t time.Time) bool {
	open, ok1 := minuteOfDay(s.OpeningTime)
	closing, ok2 := minuteOfDay(s.ClosingTime)
	if !ok1 || !ok2 {
		return true
	}
	now := t.Hour()*60 + t.Minute()
	if closing < open {
		return now >= open || now <= closing
	}
	return now >= open && now <= closing
}

func minuteOfDay(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, layout := range []string{"3:04 PM", "3:04PM", "15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Hour()*60 + t.Minute(), true
		}
	}
	return 0, false
}

type Variant struct {
	Label       string   `json:"label" bson:"label"`
	Price       *float64 `json:"price,omitempty" bson:"price,omitempty"`
	Image       string   `json:"image,omitempty" bson:"image,omitempty"`
	Description string   `json:"description,omitempty" bson:"description,omitempty"`
}

// UnmarshalBSON accepts older documents that name the variant by "size".
func (v *Variant) UnmarshalBSON(data []byte) error {
	var raw struct {
		Label       string   `bson:"label"`
		Size        string   `bson:"size"`
		Price       *float64 `bson:"price"`
		Image       string   `bson:"image"`
		Description string   `bson:"description"`
	}
	if err := bson.Unmarshal(data, &raw); err != nil {
		return err
	}
	*v = Variant{
		Label:       raw.Label,
		Price:       raw.Price,
		Image:       raw.Image,
		Description: raw.Description,
	}
	if strings.TrimSpace(v.Label) == "" {
		v.Label = raw.Size
	}
	return nil
}

type Product struct {
	ID          identity.ID `json:"_id" bson:"_id,omitempty"`
	ShopID      identity.ID `json:"shop_id" bson:"shop_id"`
	Name        string      `json:"name" bson:"name"`
	Description string      `json:"description" bson:"description"`
	Price       float64     `json:"price" bson:"price"`
	Quantity    int         `json:"quantity" bson:"quantity"`
	ImageURL    string      `json:"image_url" bson:"image_url"`
	Variants    []Variant   `json:"variants" bson:"variants"`
}

// Variant returns a copy of the variant labelled label.
func (p *Product) Variant(label string) (Variant, bool) {
	for _, v := range p.Variants {
		if strings.EqualFold(v.Label, label) {
			return v, true
		}
	}
	return Variant{}, false
}

// UnitPrice is the variant override when present, else the base price.
func (p *Product) UnitPrice(v *Variant) float64 {
	if v != nil && v.Price != nil {
		return *v.Price
	}
	return p.Price
}
