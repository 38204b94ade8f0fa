package erp

import (
	"bytes"
	"strconv"
	"time"

	"github.com/saul00x/gestion3-sub000/internal/geo"
)

// Number is a float64 that tolerates the backend's loosely-typed numeric
// fields: raw numbers, numeric strings, null and garbage all decode, with
// anything non-numeric coercing to 0 instead of propagating an error.
type Number float64

// UnmarshalJSON decodes numbers, numeric strings and null defensively.
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	raw := string(data)
	if len(raw) >= 2 && raw[0] == '"' && raw[len(raw)-1] == '"' {
		raw = raw[1 : len(raw)-1]
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(value)
	return nil
}

// Float64 returns the plain value.
func (n Number) Float64() float64 { return float64(n) }

// Stock is one stock line of a product in a store.
type Stock struct {
	ID        string `json:"id"`
	ProductID string `json:"produit"`
	StoreID   string `json:"magasin"`
	Quantity  Number `json:"quantite"`
	Threshold Number `json:"seuil"`
}

// Product is a catalog product.
type Product struct {
	ID         string `json:"id"`
	Name       string `json:"nom"`
	Price      Number `json:"prix"`
	Threshold  Number `json:"seuil"`
	SupplierID string `json:"fournisseur"`
}

// Store is a physical store location.
type Store struct {
	ID        string  `json:"id"`
	Name      string  `json:"nom"`
	Address   string  `json:"adresse"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Hours     string  `json:"horaires"`
}

// Position returns the store coordinates.
func (s Store) Position() geo.Position {
	return geo.Position{Lat: s.Latitude, Lon: s.Longitude}
}

// Supplier is a product supplier.
type Supplier struct {
	ID      string `json:"id"`
	Name    string `json:"nom"`
	Email   string `json:"email"`
	Phone   string `json:"telephone"`
	Address string `json:"adresse"`
}

// User is a workforce user.
type User struct {
	ID        string `json:"id"`
	FirstName string `json:"prenom"`
	LastName  string `json:"nom"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	StoreID   string `json:"magasin"`
}

// Assignment is a user's assigned store, the geofence target for clock-in.
type Assignment struct {
	LocationID   string  `json:"id"`
	LocationName string  `json:"nom"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
}

// Position returns the assignment coordinates.
func (a Assignment) Position() geo.Position {
	return geo.Position{Lat: a.Latitude, Lon: a.Longitude}
}

// AttendanceRecord is the server's view of one user's day of attendance.
type AttendanceRecord struct {
	ID         string     `json:"id"`
	UserID     string     `json:"utilisateur"`
	LocationID string     `json:"magasin"`
	Date       string     `json:"date"`
	Arrival    *time.Time `json:"heure_arrivee,omitempty"`
	Departure  *time.Time `json:"heure_depart,omitempty"`
	BreakStart *time.Time `json:"debut_pause,omitempty"`
	BreakEnd   *time.Time `json:"fin_pause,omitempty"`
}

// AttendanceSubmission is one attendance action POSTed to the backend.
type AttendanceSubmission struct {
	UserID         string  `json:"utilisateur"`
	LocationID     string  `json:"magasin"`
	LocationName   string  `json:"nom_magasin"`
	Date           string  `json:"date"`
	Latitude       float64 `json:"latitude"`
	Longitude      float64 `json:"longitude"`
	Action         string  `json:"action"`
	IdempotencyKey string  `json:"-"`
}

// Message is one entry of the user-to-user messaging feature.
type Message struct {
	ID          string    `json:"id"`
	SenderID    string    `json:"expediteur"`
	RecipientID string    `json:"destinataire"`
	Body        string    `json:"contenu"`
	SentAt      time.Time `json:"envoye_le"`
}

// OutboundMessage is a message to send.
type OutboundMessage struct {
	ID          string `json:"id"`
	SenderID    string `json:"expediteur"`
	RecipientID string `json:"destinataire"`
	Body        string `json:"contenu"`
}
