package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// ID is an identifier the storefront sends either as a JSON number or
// as a JSON string. Integer IDs are written back as numbers.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsInteger() {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

// IsInteger reports whether the ID is a canonical integer that fits a
// backend Long
func (id ID) IsInteger() bool {
	n, err := strconv.ParseInt(string(id), 10, 64)
	return err == nil && strconv.FormatInt(n, 10) == string(id)
}

// OrderDraft is the client-held order awaiting payment confirmation.
// It is created by the cart step and mirrored into the session's
// currentOrder slot so a full-page redirect can recover it.
//
// The typed fields are a read-only view. A draft decoded from JSON keeps
// its original bytes and encodes back to exactly them, so fields the
// view does not name survive the round trip.
type OrderDraft struct {
	OrderID       ID          `json:"orderId"`
	MerchantUID   string      `json:"merchantUid"`
	OrderItemList []OrderItem `json:"orderItemList"`
	OrderDTO      OrderDTO    `json:"orderDTO"`

	raw json.RawMessage
}

type orderDraftView OrderDraft

func (d *OrderDraft) UnmarshalJSON(data []byte) error {
	var v orderDraftView
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*d = OrderDraft(v)
	d.raw = nil
	if trimmed := bytes.TrimSpace(data); !bytes.Equal(trimmed, []byte("null")) {
		d.raw = append(json.RawMessage(nil), trimmed...)
	}
	return nil
}

func (d OrderDraft) MarshalJSON() ([]byte, error) {
	if len(d.raw) > 0 {
		return d.raw, nil
	}
	return json.Marshal(orderDraftView(d))
}

// Raw returns the JSON the draft was decoded from, if any
func (d *OrderDraft) Raw() json.RawMessage {
	if d == nil {
		return nil
	}
	return d.raw
}

// OrderItem represents a single line of the draft
type OrderItem struct {
	ProductID   ID      `json:"productId,omitempty"`
	ProductName string  `json:"productName,omitempty"`
	Quantity    int     `json:"quantity,omitempty"`
	Price       float64 `json:"price,omitempty"`
}

// OrderDTO carries the buyer and the total the widget charges
type OrderDTO struct {
	TotalPrice  float64 `json:"totalPrice"`
	Consumer    string  `json:"consumer"`
	Email       string  `json:"email"`
	PhoneNumber string  `json:"phoneNumber"`
}

// HasOrderID reports whether the draft names a backend order. Empty and
// zero IDs do not.
func (d *OrderDraft) HasOrderID() bool {
	return d != nil && d.OrderID != "" && d.OrderID != "0"
}
