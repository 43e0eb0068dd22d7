// Package codec serializes event payloads for the journal. Layouts are
// little-endian with length-prefixed strings; the event header travels in
// the journal record, not in the payload.
package codec

import (
	"encoding/binary"
	"errors"

	"gxcoin/internal/schema"
)

var (
	ErrUnknownEventType = errors.New("codec: unknown event type")
	ErrMissingPayload   = errors.New("codec: event payload missing")
	ErrTruncatedPayload = errors.New("codec: truncated payload")
	ErrStringTooLong    = errors.New("codec: string exceeds 65535 bytes")
)

// EncodePayload appends the event's payload bytes to dst. An event with no
// payload struct set is malformed and rejected.
func EncodePayload(dst []byte, ev schema.Event) ([]byte, error) {
	switch {
	case ev.Order != nil:
		return encodeOrderEvent(dst, ev.Order)
	case ev.Trade != nil:
		return encodeTrade(dst, ev.Trade)
	case ev.Balance != nil:
		return encodeBalance(dst, ev.Balance)
	case ev.Trader != nil:
		return encodeTrader(dst, ev.Trader)
	case ev.Transfer != nil:
		return encodeTransfer(dst, ev.Transfer)
	case ev.Control != nil:
		return encodeControl(dst, ev.Control)
	default:
		return nil, ErrMissingPayload
	}
}

// DecodeEvent rebuilds an event from a journal header and payload.
func DecodeEvent(header schema.EventHeader, payload []byte) (schema.Event, error) {
	ev := schema.Event{Header: header}
	var ok bool
	switch header.Type {
	case schema.EventOrderCreated, schema.EventOrderMatched,
		schema.EventOrderCancelled, schema.EventRemainderCancelled:
		var o schema.OrderEvent
		if o, ok = decodeOrderEvent(payload); ok {
			ev.Order = &o
		}
	case schema.EventTradeExecuted:
		var t schema.TradeExecuted
		if t, ok = decodeTrade(payload); ok {
			ev.Trade = &t
		}
	case schema.EventCoinsSeeded, schema.EventCoinsAdjusted,
		schema.EventDollarsFunded, schema.EventCashAdjusted,
		schema.EventDollarsWithdrawn, schema.EventDollarsWithdrawalCancelled:
		var b schema.BalanceChange
		if b, ok = decodeBalance(payload); ok {
			ev.Balance = &b
		}
	case schema.EventTraderRegistered, schema.EventTraderUnregistered:
		var t schema.TraderChange
		if t, ok = decodeTrader(payload); ok {
			ev.Trader = &t
		}
	case schema.EventTraderBalanceTransferred:
		var t schema.TraderTransfer
		if t, ok = decodeTransfer(payload); ok {
			ev.Transfer = &t
		}
	case schema.EventTradingStatusChanged, schema.EventCoinLimitChanged:
		var c schema.ControlChange
		if c, ok = decodeControl(payload); ok {
			ev.Control = &c
		}
	default:
		return schema.Event{}, ErrUnknownEventType
	}
	if !ok {
		return schema.Event{}, ErrTruncatedPayload
	}
	return ev, nil
}

func appendUint64(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

func appendInt64(dst []byte, v int64) []byte {
	return binary.LittleEndian.AppendUint64(dst, uint64(v))
}

func appendUint16(dst []byte, v uint16) []byte {
	return binary.LittleEndian.AppendUint16(dst, v)
}

func appendBool(dst []byte, v bool) []byte {
	if v {
		return append(dst, 1)
	}
	return append(dst, 0)
}

func appendString(dst []byte, s string) ([]byte, error) {
	if len(s) > int(^uint16(0)) {
		return nil, ErrStringTooLong
	}
	dst = appendUint16(dst, uint16(len(s)))
	return append(dst, s...), nil
}

func readUint64(src []byte) (uint64, []byte, bool) {
	if len(src) < 8 {
		return 0, nil, false
	}
	return binary.LittleEndian.Uint64(src[:8]), src[8:], true
}

func readInt64(src []byte) (int64, []byte, bool) {
	v, rest, ok := readUint64(src)
	return int64(v), rest, ok
}

func readUint16(src []byte) (uint16, []byte, bool) {
	if len(src) < 2 {
		return 0, nil, false
	}
	return binary.LittleEndian.Uint16(src[:2]), src[2:], true
}

func readBool(src []byte) (bool, []byte, bool) {
	if len(src) < 1 {
		return false, nil, false
	}
	return src[0] != 0, src[1:], true
}

func readString(src []byte) (string, []byte, bool) {
	n, rest, ok := readUint16(src)
	if !ok || len(rest) < int(n) {
		return "", nil, false
	}
	return string(rest[:n]), rest[n:], true
}
