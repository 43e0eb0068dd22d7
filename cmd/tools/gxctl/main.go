// Control client. Sends one command to a running daemon's control socket
// and prints the JSON response.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"gxcoin/internal/ctl"
	"gxcoin/pkg/uds"
)

func main() {
	socketPath := flag.String("socket", "/tmp/gxd.sock", "Control socket path")
	op := flag.String("op", "status", "Operation")
	caller := flag.String("caller", "", "Calling account")
	account := flag.String("account", "", "Target account")
	to := flag.String("to", "", "Transfer destination account")
	side := flag.String("side", "", "buy | sell")
	orderID := flag.Uint64("order", 0, "Order id")
	quantity := flag.Int64("qty", 0, "Order quantity")
	price := flag.Int64("price", 0, "Order price in cents")
	amount := flag.Int64("amount", 0, "Amount in coins or cents")
	budget := flag.Int("budget", 0, "Match budget (0=default)")
	open := flag.Bool("open", false, "Trading open flag for -op trading")
	notes := flag.String("notes", "", "Adjustment notes")
	flag.Parse()

	req := ctl.Request{
		Op:       *op,
		Caller:   *caller,
		Account:  *account,
		To:       *to,
		Side:     *side,
		OrderID:  *orderID,
		Quantity: *quantity,
		Price:    *price,
		Amount:   *amount,
		Budget:   *budget,
		Open:     *open,
		Notes:    *notes,
	}

	client, err := uds.NewClient(*socketPath)
	if err != nil {
		log.Fatalf("client init failed: %v", err)
	}
	conn, err := client.Dial()
	if err != nil {
		log.Fatalf("dial %s failed: %v", *socketPath, err)
	}
	defer conn.Close()

	data, err := json.Marshal(req)
	if err != nil {
		log.Fatalf("encode request failed: %v", err)
	}
	if _, err := conn.Write(append(data, '\n')); err != nil {
		log.Fatalf("send request failed: %v", err)
	}

	in := bufio.NewScanner(conn)
	if !in.Scan() {
		log.Fatalf("read response failed: %v", in.Err())
	}
	var resp ctl.Response
	if err := json.Unmarshal(in.Bytes(), &resp); err != nil {
		log.Fatalf("decode response failed: %v", err)
	}

	pretty, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		log.Fatalf("render response failed: %v", err)
	}
	fmt.Println(string(pretty))
	if !resp.OK {
		os.Exit(1)
	}
}
