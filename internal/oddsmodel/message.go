// Package oddsmodel defines the odds-change message shape the router
// consumes: a fixture header plus an ordered list of markets, each with an
// ordered list of outcomes carrying decimal odds.
package oddsmodel

import (
	"encoding/xml"
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Product identifies the lifecycle phase of a fixture at message time.
type Product string

const (
	ProductPrematch Product = "PREMATCH"
	ProductLive     Product = "LIVE"
)

// MarketStatus mirrors the non-odds status bits a boost transform must
// leave untouched.
type MarketStatus int

const (
	MarketStatusActive MarketStatus = iota
	MarketStatusSuspended
	MarketStatusHandedOver
)

// Outcome is a single selection within a market and its current odds.
type Outcome struct {
	XMLName xml.Name        `xml:"outcome" json:"-"`
	ID      string          `xml:"id,attr" json:"id"`
	Odds    decimal.Decimal `xml:"odds,attr" json:"odds"`
	Active  *bool           `xml:"active,attr,omitempty" json:"active,omitempty"`
}

func (o Outcome) clone() Outcome {
	c := o
	if o.Active != nil {
		v := *o.Active
		c.Active = &v
	}
	return c
}

// Market is a bettable proposition within a fixture. Its XML form is
// handled by MarshalXML/UnmarshalXML below so that Specifiers round-trips
// through the "specifiers" attribute as a single deterministic string
// instead of being silently dropped.
type Market struct {
	ID            int               `json:"id"`
	Specifiers    map[string]string `json:"specifiers,omitempty"`
	Status        MarketStatus      `json:"status"`
	CashoutStatus *int              `json:"cashoutStatus,omitempty"`
	Outcomes      []Outcome         `json:"outcomes"`
}

// marketXML is the wire shape Market marshals to and unmarshals from:
// Specifiers collapsed to its deterministic string form in a single attr.
type marketXML struct {
	XMLName       xml.Name     `xml:"market"`
	ID            int          `xml:"id,attr"`
	SpecifierStr  string       `xml:"specifiers,attr,omitempty"`
	Status        MarketStatus `xml:"status,attr"`
	CashoutStatus *int         `xml:"cashout_status,attr,omitempty"`
	Outcomes      []Outcome    `xml:"outcome"`
}

// MarshalXML implements xml.Marshaler.
func (m Market) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	x := marketXML{
		ID:            m.ID,
		SpecifierStr:  specifierString(m.Specifiers),
		Status:        m.Status,
		CashoutStatus: m.CashoutStatus,
		Outcomes:      m.Outcomes,
	}
	return e.EncodeElement(x, start)
}

// UnmarshalXML implements xml.Unmarshaler, parsing the specifiers
// attribute back into a map.
func (m *Market) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	var x marketXML
	if err := d.DecodeElement(&x, &start); err != nil {
		return err
	}
	m.ID = x.ID
	m.Status = x.Status
	m.CashoutStatus = x.CashoutStatus
	m.Outcomes = x.Outcomes
	m.Specifiers = parseSpecifierString(x.SpecifierStr)
	return nil
}

// specifierString renders m.Specifiers with a deterministic key ordering,
// e.g. "quarternr=1|total=2.5".
func specifierString(specifiers map[string]string) string {
	if len(specifiers) == 0 {
		return ""
	}
	keys := make([]string, 0, len(specifiers))
	for k := range specifiers {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+"="+specifiers[k])
	}
	return strings.Join(parts, "|")
}

// parseSpecifierString is specifierString's inverse, used when
// unmarshaling a market back out of its canonical XML form.
func parseSpecifierString(s string) map[string]string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, "|")
	out := make(map[string]string, len(parts))
	for _, p := range parts {
		k, v, _ := strings.Cut(p, "=")
		out[k] = v
	}
	return out
}

// MarketKey is a market's identity for boost-join purposes:
// "{id}|{specifiers}" with specifiers in deterministic order.
func (m Market) MarketKey() string {
	return fmt.Sprintf("%d|%s", m.ID, specifierString(m.Specifiers))
}

func (m Market) clone() Market {
	c := m
	if m.Specifiers != nil {
		c.Specifiers = make(map[string]string, len(m.Specifiers))
		for k, v := range m.Specifiers {
			c.Specifiers[k] = v
		}
	}
	if m.CashoutStatus != nil {
		v := *m.CashoutStatus
		c.CashoutStatus = &v
	}
	c.Outcomes = make([]Outcome, len(m.Outcomes))
	for i, o := range m.Outcomes {
		c.Outcomes[i] = o.clone()
	}
	return c
}

// Message is an odds-change update for a single fixture.
type Message struct {
	XMLName          xml.Name `xml:"odds_change" json:"-"`
	EventID          string   `xml:"event_id,attr" json:"eventId"`
	Product          Product  `xml:"product,attr" json:"product"`
	Timestamp        int64    `xml:"timestamp,attr" json:"timestamp"`
	OddsChangeReason *uint8   `xml:"odds_change_reason,attr,omitempty" json:"oddsChangeReason,omitempty"`
	RequestID        *int64   `xml:"request_id,attr,omitempty" json:"requestId,omitempty"`
	Markets          []Market `xml:"market" json:"markets"`
}

// Clone produces a deep copy whose mutable state (markets, outcomes,
// specifier maps) is wholly disjoint from the receiver's.
func (m Message) Clone() Message {
	c := m
	if m.OddsChangeReason != nil {
		v := *m.OddsChangeReason
		c.OddsChangeReason = &v
	}
	if m.RequestID != nil {
		v := *m.RequestID
		c.RequestID = &v
	}
	c.Markets = make([]Market, len(m.Markets))
	for i, mk := range m.Markets {
		c.Markets[i] = mk.clone()
	}
	return c
}
