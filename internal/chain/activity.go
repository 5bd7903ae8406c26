package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

// ActivityConfig configures the wallet-activity subscriber.
type ActivityConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// PingInterval is interval for sending ping frames.
	PingInterval time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
	// WriteTimeout is timeout for writing messages.
	WriteTimeout time.Duration
}

// DefaultActivityConfig returns default subscriber configuration.
func DefaultActivityConfig() ActivityConfig {
	return ActivityConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		PingInterval:      30 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      10 * time.Second,
	}
}

// ActivitySubscriber watches tracked wallets over a WebSocket RPC endpoint
// (accountSubscribe) and emits the wallet address whenever on-chain activity
// touches it. The reconciler uses this to trigger targeted reconciliation
// instead of waiting for the next scheduled pass.
type ActivitySubscriber struct {
	endpoint string
	config   ActivityConfig
	wallets  []string
	logger   *log.Logger

	conn      *websocket.Conn
	connMu    sync.Mutex
	closed    atomic.Bool
	requestID atomic.Uint64

	// subToWallet maps subscription ID to wallet address
	subToWallet   map[int64]string
	subToWalletMu sync.RWMutex

	// pendingSubs maps request ID to the wallet awaiting a subscription ID
	pendingSubs   map[uint64]string
	pendingSubsMu sync.Mutex

	out  chan string
	done chan struct{}
	wg   sync.WaitGroup
}

// NewActivitySubscriber creates a subscriber for the given wallets and
// connects to the endpoint.
func NewActivitySubscriber(ctx context.Context, endpoint string, wallets []string, config *ActivityConfig, logger *log.Logger) (*ActivitySubscriber, error) {
	cfg := DefaultActivityConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}

	for _, w := range wallets {
		if err := ValidateAddress(w); err != nil {
			return nil, fmt.Errorf("invalid wallet address %q: %w", w, err)
		}
	}

	s := &ActivitySubscriber{
		endpoint:    endpoint,
		config:      cfg,
		wallets:     wallets,
		logger:      logger,
		subToWallet: make(map[int64]string),
		pendingSubs: make(map[uint64]string),
		out:         make(chan string, 256),
		done:        make(chan struct{}),
	}

	if err := s.connect(ctx); err != nil {
		return nil, err
	}
	if err := s.subscribeAll(); err != nil {
		s.Close()
		return nil, err
	}

	s.wg.Add(1)
	go s.readLoop()

	s.wg.Add(1)
	go s.pingLoop()

	return s, nil
}

// Activity returns the channel of wallet addresses with observed activity.
func (s *ActivitySubscriber) Activity() <-chan string {
	return s.out
}

// Close shuts the subscriber down.
func (s *ActivitySubscriber) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	close(s.done)

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		s.conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	close(s.out)
	return nil
}

// connect establishes the WebSocket connection.
func (s *ActivitySubscriber) connect(ctx context.Context) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, s.endpoint, nil)
	if err != nil {
		return fmt.Errorf("websocket dial: %w", err)
	}

	s.conn = conn
	return nil
}

// subscribeAll sends an accountSubscribe request per tracked wallet.
// Confirmations arrive asynchronously and are resolved in readLoop.
func (s *ActivitySubscriber) subscribeAll() error {
	for _, wallet := range s.wallets {
		reqID := s.requestID.Add(1)

		s.pendingSubsMu.Lock()
		s.pendingSubs[reqID] = wallet
		s.pendingSubsMu.Unlock()

		req := wsRequest{
			JSONRPC: "2.0",
			ID:      reqID,
			Method:  "accountSubscribe",
			Params: []interface{}{
				wallet,
				map[string]string{"commitment": "confirmed", "encoding": "base64"},
			},
		}

		s.connMu.Lock()
		s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
		err := s.conn.WriteJSON(req)
		s.connMu.Unlock()
		if err != nil {
			return fmt.Errorf("write subscribe for %s: %w", wallet, err)
		}
	}
	return nil
}

// readLoop reads messages, resolves subscription confirmations and emits
// wallet activity. On read failure it reconnects with backoff and
// resubscribes all wallets.
func (s *ActivitySubscriber) readLoop() {
	defer s.wg.Done()

	reconnectDelay := s.config.ReconnectDelay

	for !s.closed.Load() {
		s.connMu.Lock()
		conn := s.conn
		s.connMu.Unlock()

		if conn == nil {
			select {
			case <-s.done:
				return
			case <-time.After(100 * time.Millisecond):
				continue
			}
		}

		conn.SetReadDeadline(time.Now().Add(s.config.ReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			if s.closed.Load() {
				return
			}
			s.logger.Printf("websocket read failed, reconnecting in %v: %v", reconnectDelay, err)
			s.reconnect(reconnectDelay)
			reconnectDelay *= 2
			if reconnectDelay > s.config.MaxReconnectDelay {
				reconnectDelay = s.config.MaxReconnectDelay
			}
			continue
		}
		reconnectDelay = s.config.ReconnectDelay

		s.handleMessage(data)
	}
}

// handleMessage dispatches one incoming frame.
func (s *ActivitySubscriber) handleMessage(data []byte) {
	var msg wsMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		s.logger.Printf("skip unparseable websocket message: %v", err)
		return
	}

	// Subscription confirmation: {"id": reqID, "result": subID}
	if msg.ID != 0 && msg.Result != nil {
		var subID int64
		if err := json.Unmarshal(msg.Result, &subID); err != nil {
			return
		}
		s.pendingSubsMu.Lock()
		wallet, ok := s.pendingSubs[msg.ID]
		delete(s.pendingSubs, msg.ID)
		s.pendingSubsMu.Unlock()
		if ok {
			s.subToWalletMu.Lock()
			s.subToWallet[subID] = wallet
			s.subToWalletMu.Unlock()
		}
		return
	}

	// Account notification: {"method": "accountNotification", "params": {"subscription": subID}}
	if msg.Method != "accountNotification" || msg.Params == nil {
		return
	}
	var params struct {
		Subscription int64 `json:"subscription"`
	}
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return
	}

	s.subToWalletMu.RLock()
	wallet, ok := s.subToWallet[params.Subscription]
	s.subToWalletMu.RUnlock()
	if !ok {
		return
	}

	select {
	case s.out <- wallet:
	default:
		// Reconciliation is already pending for a full buffer; dropping the
		// notification loses nothing since passes read full history.
	}
}

// reconnect re-establishes the connection and resubscribes all wallets.
func (s *ActivitySubscriber) reconnect(delay time.Duration) {
	select {
	case <-s.done:
		return
	case <-time.After(delay):
	}

	s.connMu.Lock()
	if s.conn != nil {
		s.conn.Close()
		s.conn = nil
	}
	s.connMu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := s.connect(ctx); err != nil {
		s.logger.Printf("reconnect failed: %v", err)
		return
	}

	s.subToWalletMu.Lock()
	s.subToWallet = make(map[int64]string)
	s.subToWalletMu.Unlock()

	if err := s.subscribeAll(); err != nil {
		s.logger.Printf("resubscribe failed: %v", err)
	}
}

// pingLoop keeps the connection alive.
func (s *ActivitySubscriber) pingLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			return
		case <-ticker.C:
			s.connMu.Lock()
			if s.conn != nil {
				s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
				if err := s.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					s.logger.Printf("ping failed: %v", err)
				}
			}
			s.connMu.Unlock()
		}
	}
}

// wsRequest is a JSON-RPC 2.0 WebSocket request.
type wsRequest struct {
	JSONRPC string        `json:"jsonrpc"`
	ID      uint64        `json:"id"`
	Method  string        `json:"method"`
	Params  []interface{} `json:"params,omitempty"`
}

// wsMessage is a JSON-RPC 2.0 WebSocket frame (response or notification).
type wsMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      uint64          `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
}
