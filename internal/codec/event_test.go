package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gxcoin/internal/schema"
)

func TestEncodeDecodeEvents(t *testing.T) {
	events := []schema.Event{
		{
			Header: schema.NewHeader(schema.EventOrderCreated, 1, 111),
			Order: &schema.OrderEvent{
				OrderID:          42,
				Side:             schema.SideBuy,
				Account:          "alice",
				Quantity:         3,
				OriginalQuantity: 5,
				PricePerCoin:     20,
				ExpirationTime:   1_700_000_000,
			},
		},
		{
			Header: schema.NewHeader(schema.EventTradeExecuted, 2, 222),
			Trade: &schema.TradeExecuted{
				BuyOrderID:   42,
				SellOrderID:  7,
				Buyer:        "alice",
				Seller:       "bob",
				Quantity:     3,
				PricePerCoin: 18,
				BuyerRefund:  6,
			},
		},
		{
			Header: schema.NewHeader(schema.EventCashAdjusted, 3, 333),
			Balance: &schema.BalanceChange{
				Account:       "bob",
				Reason:        schema.BalanceReasonAdjustCash,
				DollarDelta:   -50,
				DollarBalance: 950,
				Notes:         "chargeback",
			},
		},
		{
			Header: schema.NewHeader(schema.EventTraderRegistered, 4, 444),
			Trader: &schema.TraderChange{Account: "carol", Registered: true},
		},
		{
			Header: schema.NewHeader(schema.EventTraderBalanceTransferred, 5, 555),
			Transfer: &schema.TraderTransfer{
				From:    "carol",
				To:      "carol2",
				Coins:   10,
				Dollars: 1_000,
			},
		},
		{
			Header: schema.NewHeader(schema.EventCoinLimitChanged, 6, 666),
			Control: &schema.ControlChange{
				TradingOpen: true,
				CoinLimit:   50_000_000,
				TotalCoins:  12,
			},
		},
	}

	for _, want := range events {
		payload, err := EncodePayload(nil, want)
		require.NoError(t, err)

		got, err := DecodeEvent(want.Header, payload)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestDecodeTruncatedPayload(t *testing.T) {
	ev := schema.Event{
		Header: schema.NewHeader(schema.EventTradeExecuted, 9, 999),
		Trade: &schema.TradeExecuted{
			BuyOrderID: 1, SellOrderID: 2,
			Buyer: "alice", Seller: "bob",
			Quantity: 1, PricePerCoin: 10,
		},
	}
	payload, err := EncodePayload(nil, ev)
	require.NoError(t, err)

	for cut := 0; cut < len(payload); cut++ {
		_, err := DecodeEvent(ev.Header, payload[:cut])
		assert.ErrorIs(t, err, ErrTruncatedPayload)
	}
}

func TestDecodeUnknownType(t *testing.T) {
	_, err := DecodeEvent(schema.EventHeader{Type: schema.EventUnknown}, nil)
	assert.ErrorIs(t, err, ErrUnknownEventType)

	_, err = EncodePayload(nil, schema.Event{})
	assert.ErrorIs(t, err, ErrMissingPayload)
}
