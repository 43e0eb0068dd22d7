// Package ctl serves the local control plane: a newline-delimited JSON
// protocol over a Unix domain socket through which operators and traders
// drive the platform.
package ctl

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"net"
	"sync"

	"github.com/yanun0323/logs"

	"gxcoin/internal/platform"
	"gxcoin/internal/schema"
	"gxcoin/pkg/scanner"
	"gxcoin/pkg/uds"
)

var (
	ErrUnknownOp   = errors.New("ctl: unknown op")
	ErrUnknownSide = errors.New("ctl: side must be buy or sell")
)

// maxRequestBytes bounds a single request line.
const maxRequestBytes = 1 << 16

var opKey = []byte(`"op"`)

// Request is one control command.
type Request struct {
	Op       string `json:"op"`
	Caller   string `json:"caller"`
	Account  string `json:"account,omitempty"`
	To       string `json:"to,omitempty"`
	Side     string `json:"side,omitempty"`
	OrderID  uint64 `json:"orderId,omitempty"`
	Quantity int64  `json:"quantity,omitempty"`
	Price    int64  `json:"price,omitempty"`
	Amount   int64  `json:"amount,omitempty"`
	Budget   int    `json:"budget,omitempty"`
	Open     bool   `json:"open,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// Response is the reply to one request.
type Response struct {
	OK          bool        `json:"ok"`
	Error       string      `json:"error,omitempty"`
	OrderID     uint64      `json:"orderId,omitempty"`
	Coins       int64       `json:"coins,omitempty"`
	Dollars     int64       `json:"dollars,omitempty"`
	Depth       int         `json:"depth,omitempty"`
	Orders      []OrderInfo `json:"orders,omitempty"`
	TradingOpen bool        `json:"tradingOpen,omitempty"`
	CoinLimit   int64       `json:"coinLimit,omitempty"`
	TotalCoins  int64       `json:"totalCoins,omitempty"`
	Registered  bool        `json:"registered,omitempty"`
}

// OrderInfo is the wire view of one resting order.
type OrderInfo struct {
	OrderID  uint64 `json:"orderId"`
	Account  string `json:"account"`
	Quantity int64  `json:"quantity"`
	Price    int64  `json:"price"`
}

// Server accepts control connections and dispatches requests to the
// platform.
type Server struct {
	platform *platform.Platform
	listener *uds.Server
}

// NewServer builds a control server on the given socket path.
func NewServer(socketPath string, p *platform.Platform) (*Server, error) {
	listener, err := uds.NewServer(socketPath)
	if err != nil {
		return nil, err
	}
	return &Server{platform: p, listener: listener}, nil
}

// Serve listens and handles connections until the context is done.
func (s *Server) Serve(ctx context.Context) error {
	if err := s.listener.Listen(); err != nil {
		return err
	}
	go func() {
		<-ctx.Done()
		_ = s.listener.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			wg.Wait()
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return err
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConn(conn)
		}()
	}
}

func (s *Server) handleConn(conn *net.UnixConn) {
	defer conn.Close()

	in := bufio.NewScanner(conn)
	in.Buffer(make([]byte, 4096), maxRequestBytes)
	out := bufio.NewWriter(conn)
	enc := json.NewEncoder(out)

	for in.Scan() {
		line := in.Bytes()
		if len(line) == 0 {
			continue
		}
		resp := s.dispatch(line)
		if err := enc.Encode(resp); err != nil {
			logs.Errorf("ctl: write response: %+v", err)
			return
		}
		if err := out.Flush(); err != nil {
			return
		}
	}
	if err := in.Err(); err != nil {
		logs.Errorf("ctl: read request: %+v", err)
	}
}

// dispatch routes on the scanned op field before paying for a full decode,
// so malformed lines are rejected cheaply.
func (s *Server) dispatch(line []byte) Response {
	op, ok := scanner.ScanStringField(line, opKey)
	if !ok {
		return fail(ErrUnknownOp)
	}
	var req Request
	if err := json.Unmarshal(line, &req); err != nil {
		return fail(err)
	}
	resp, err := s.handle(string(op), req)
	if err != nil {
		return fail(err)
	}
	resp.OK = true
	return resp
}

func (s *Server) handle(op string, req Request) (Response, error) {
	p := s.platform
	caller := schema.Account(req.Caller)
	account := schema.Account(req.Account)

	switch op {
	case "register":
		return Response{}, p.RegisterTraderAccount(caller, account)
	case "unregister":
		return Response{}, p.UnregisterTraderAccount(caller, account)
	case "seed":
		return Response{}, p.SeedCoins(caller, account, schema.Quantity(req.Amount))
	case "fund":
		return Response{}, p.Fund(caller, account, schema.Notional(req.Amount))
	case "adjust-cash":
		return Response{}, p.AdjustCash(caller, account, schema.Notional(req.Amount), req.Notes)
	case "adjust-coins":
		return Response{}, p.AdjustCoins(caller, account, schema.Quantity(req.Amount), req.Notes)
	case "withdraw":
		return Response{}, p.Withdraw(caller, schema.Notional(req.Amount))
	case "cancel-withdrawal":
		return Response{}, p.AdminCancelWithdrawal(caller, account, schema.Notional(req.Amount))
	case "transfer":
		return Response{}, p.TransferTraderBalance(caller, account, schema.Account(req.To))
	case "buy":
		res, err := p.CreateOrder(caller, schema.SideBuy, schema.Quantity(req.Quantity), schema.Price(req.Price), 0, req.Budget)
		return Response{OrderID: res.OrderID}, err
	case "sell":
		res, err := p.CreateOrder(caller, schema.SideSell, schema.Quantity(req.Quantity), schema.Price(req.Price), 0, req.Budget)
		return Response{OrderID: res.OrderID}, err
	case "cancel":
		side, err := parseSide(req.Side)
		if err != nil {
			return Response{}, err
		}
		return Response{}, p.CancelOrder(caller, side, req.OrderID)
	case "admin-cancel":
		side, err := parseSide(req.Side)
		if err != nil {
			return Response{}, err
		}
		return Response{}, p.CancelOrderByAdmin(caller, side, req.OrderID)
	case "balance":
		return Response{
			Coins:      int64(p.CoinBalance(account)),
			Dollars:    int64(p.DollarBalance(account)),
			Registered: p.IsRegisteredTrader(account),
		}, nil
	case "depth":
		side, err := parseSide(req.Side)
		if err != nil {
			return Response{}, err
		}
		return Response{Depth: p.BookDepth(side)}, nil
	case "orders":
		side, err := parseSide(req.Side)
		if err != nil {
			return Response{}, err
		}
		var infos []OrderInfo
		for _, o := range p.Orders(side) {
			infos = append(infos, OrderInfo{
				OrderID:  o.OrderID,
				Account:  string(o.Account),
				Quantity: int64(o.Quantity),
				Price:    int64(o.PricePerCoin),
			})
		}
		return Response{Orders: infos, Depth: len(infos)}, nil
	case "trading":
		return Response{}, p.SetTradingOpen(caller, req.Open)
	case "coin-limit":
		return Response{}, p.SetCoinLimit(caller, schema.Quantity(req.Amount))
	case "status":
		return Response{
			TradingOpen: p.IsTradingOpen(),
			CoinLimit:   int64(p.CoinLimit()),
			TotalCoins:  int64(p.TotalCoins()),
		}, nil
	default:
		return Response{}, ErrUnknownOp
	}
}

func parseSide(s string) (schema.Side, error) {
	switch s {
	case "buy":
		return schema.SideBuy, nil
	case "sell":
		return schema.SideSell, nil
	default:
		return schema.SideUnknown, ErrUnknownSide
	}
}

func fail(err error) Response {
	return Response{Error: err.Error()}
}
