package domain

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Trade identifies a BFS personnel slot. The five tradesman trades come
// first; the supervisor slot follows them.
type Trade uint8

const (
	TradeAE Trade = iota
	TradeAL
	TradeAO
	TradeAR
	TradeSE
	TradeSupervisor

	tradeCount
)

var tradeCodes = [tradeCount]string{"AE", "AL", "AO", "AR", "SE", "SUPERVISOR"}

var tradeNames = [tradeCount]string{
	"Air Engineer",
	"Air Electrical",
	"Air Ordinance",
	"Air Radio",
	"Senior Engineer",
	"Supervisor",
}

// Tradesmen lists the trades that sign through sign_tradesman, in slot order.
var Tradesmen = []Trade{TradeAE, TradeAL, TradeAO, TradeAR, TradeSE}

func (t Trade) String() string {
	if t >= tradeCount {
		return fmt.Sprintf("Trade(%d)", uint8(t))
	}
	return tradeCodes[t]
}

func (t Trade) Name() string {
	if t >= tradeCount {
		return t.String()
	}
	return tradeNames[t]
}

func (t Trade) Tradesman() bool {
	return t < TradeSupervisor
}

// ParseTrade accepts a trade code in any case ("ae", "AE", "supervisor").
func ParseTrade(s string) (Trade, bool) {
	code := strings.ToUpper(strings.TrimSpace(s))
	for i, c := range tradeCodes {
		if c == code {
			return Trade(i), true
		}
	}
	return 0, false
}

func (t Trade) MarshalText() ([]byte, error) {
	if t >= tradeCount {
		return nil, fmt.Errorf("invalid trade %d", uint8(t))
	}
	return []byte(tradeCodes[t]), nil
}

func (t *Trade) UnmarshalText(b []byte) error {
	parsed, ok := ParseTrade(string(b))
	if !ok {
		return ErrInvalidTrade.With("%q", string(b))
	}
	*t = parsed
	return nil
}

// Signature records who signed, the PIN-proof issued for that signing and when.
type Signature struct {
	SignedBy int64      `json:"signed_by,omitempty"`
	PINProof string     `json:"pin_proof,omitempty"`
	SignedAt *time.Time `json:"signed_at,omitempty"`
}

func (s Signature) Signed() bool {
	return s.SignedAt != nil
}

// TradeSlot pairs the user assigned to a trade with that trade's signature.
type TradeSlot struct {
	Assigned int64 `json:"assigned,omitempty"`
	Signature
}

func (s TradeSlot) HasAssignee() bool {
	return s.Assigned != 0
}

// TradeSlots is indexed by Trade and serialized as an object keyed by trade code.
type TradeSlots [tradeCount]TradeSlot

func (s TradeSlots) MarshalJSON() ([]byte, error) {
	out := make(map[string]TradeSlot, tradeCount)
	for i, slot := range s {
		out[tradeCodes[i]] = slot
	}
	return json.Marshal(out)
}

func (s *TradeSlots) UnmarshalJSON(b []byte) error {
	var in map[string]TradeSlot
	if err := json.Unmarshal(b, &in); err != nil {
		return err
	}
	for code, slot := range in {
		t, ok := ParseTrade(code)
		if !ok {
			return ErrInvalidTrade.With("%q", code)
		}
		s[t] = slot
	}
	return nil
}
