// Package state persists the recoverable session state of the paper bot
// so a restart within the same trading day resumes the governor's equity
// accounting and an active halt instead of starting clean.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/ducminhle1904/btc-intraday-bot/internal/logger"
	"github.com/ducminhle1904/btc-intraday-bot/internal/risk"
	"github.com/ducminhle1904/btc-intraday-bot/pkg/types"
)

const stateVersion = "1.0.0"

// State older than this is discarded on load: a circuit breaker from a
// long-dead session must not veto entries today.
const maxStateAge = 48 * time.Hour

// SessionState is the persisted snapshot of one trading session
type SessionState struct {
	Version     string        `json:"version"`
	Symbol      string        `json:"symbol"`
	SavedAt     time.Time     `json:"saved_at"`
	LastBarTime time.Time     `json:"last_bar_time"`
	Governor    GovernorState `json:"governor"`
}

// GovernorState mirrors the risk governor's snapshot in a stable wire
// format
type GovernorState struct {
	State              string              `json:"state"`
	HaltReason         string              `json:"halt_reason,omitempty"`
	Equity             float64             `json:"equity"`
	PeakEquity         float64             `json:"peak_equity"`
	SessionStartEquity float64             `json:"session_start_equity"`
	DailyPnL           float64             `json:"daily_pnl"`
	ConsecutiveLosses  int                 `json:"consecutive_losses"`
	ClosedTrades       []ClosedTradeRecord `json:"closed_trades"`
}

// ClosedTradeRecord is one realized trade in the persisted history. The
// exit reason is stored numerically; the values are stable.
type ClosedTradeRecord struct {
	PnL       float64   `json:"pnl"`
	ReturnPct float64   `json:"return_pct"`
	Reason    int       `json:"reason"`
	ClosedAt  time.Time `json:"closed_at"`
}

// Store saves and loads session state as JSON under a state directory,
// one file per symbol
type Store struct {
	log    *logger.Logger
	dir    string
	symbol string

	mu sync.Mutex
}

// NewStore creates a store rooted at dir. The directory is created on
// the first save.
func NewStore(log *logger.Logger, dir, symbol string) *Store {
	return &Store{log: log, dir: dir, symbol: symbol}
}

func (s *Store) statePath() string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_session.json", s.symbol))
}

func (s *Store) backupPath() string {
	return filepath.Join(s.dir, fmt.Sprintf("%s_session_backup.json", s.symbol))
}

// Save writes the governor snapshot atomically: the previous file is
// kept as a backup, the new state lands via temp file and rename.
func (s *Store) Save(snap risk.Snapshot, lastBar time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	state := SessionState{
		Version:     stateVersion,
		Symbol:      s.symbol,
		SavedAt:     time.Now().UTC(),
		LastBarTime: lastBar,
		Governor:    encodeGovernor(snap),
	}

	data, err := json.MarshalIndent(&state, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session state: %w", err)
	}

	statePath := s.statePath()
	if prev, err := os.ReadFile(statePath); err == nil {
		if err := os.WriteFile(s.backupPath(), prev, 0o644); err != nil {
			s.log.Warning("Failed to back up session state: %v", err)
		}
	}

	tempPath := statePath + ".tmp"
	if err := os.WriteFile(tempPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp state file: %w", err)
	}
	if err := os.Rename(tempPath, statePath); err != nil {
		return fmt.Errorf("failed to move state file: %w", err)
	}

	return nil
}

// Load reads the persisted session. A missing file is not an error: the
// returned ok is false and the caller starts clean. Stale or mismatched
// state is likewise discarded with a warning.
func (s *Store) Load() (risk.Snapshot, time.Time, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.statePath())
	if os.IsNotExist(err) {
		return risk.Snapshot{}, time.Time{}, false, nil
	}
	if err != nil {
		return risk.Snapshot{}, time.Time{}, false, fmt.Errorf("failed to read state file: %w", err)
	}

	var state SessionState
	if err := json.Unmarshal(data, &state); err != nil {
		return risk.Snapshot{}, time.Time{}, false, fmt.Errorf("failed to parse state file: %w", err)
	}

	if err := s.validate(&state); err != nil {
		s.log.Warning("Discarding saved session state: %v", err)
		return risk.Snapshot{}, time.Time{}, false, nil
	}

	return decodeGovernor(state.Governor), state.LastBarTime, true, nil
}

func (s *Store) validate(state *SessionState) error {
	if state.Symbol != s.symbol {
		return fmt.Errorf("symbol mismatch: expected %s, got %s", s.symbol, state.Symbol)
	}
	if state.Version == "" {
		return fmt.Errorf("state version is empty")
	}
	if state.Governor.Equity <= 0 {
		return fmt.Errorf("non-positive equity %.2f", state.Governor.Equity)
	}
	if age := time.Since(state.SavedAt); age > maxStateAge {
		return fmt.Errorf("state is %s old", age.Round(time.Hour))
	}
	return nil
}

func encodeGovernor(snap risk.Snapshot) GovernorState {
	trades := make([]ClosedTradeRecord, len(snap.Portfolio.ClosedTrades))
	for i, t := range snap.Portfolio.ClosedTrades {
		trades[i] = ClosedTradeRecord{
			PnL:       t.PnL,
			ReturnPct: t.ReturnPct,
			Reason:    int(t.Reason),
			ClosedAt:  t.ClosedAt,
		}
	}
	return GovernorState{
		State:              snap.State.String(),
		HaltReason:         string(snap.HaltReason),
		Equity:             snap.Portfolio.Equity,
		PeakEquity:         snap.Portfolio.PeakEquity,
		SessionStartEquity: snap.Portfolio.SessionStartEquity,
		DailyPnL:           snap.Portfolio.DailyPnL,
		ConsecutiveLosses:  snap.Portfolio.ConsecutiveLosses,
		ClosedTrades:       trades,
	}
}

func decodeGovernor(gs GovernorState) risk.Snapshot {
	trades := make([]risk.ClosedTrade, len(gs.ClosedTrades))
	for i, t := range gs.ClosedTrades {
		trades[i] = risk.ClosedTrade{
			PnL:       t.PnL,
			ReturnPct: t.ReturnPct,
			Reason:    types.ExitReason(t.Reason),
			ClosedAt:  t.ClosedAt,
		}
	}

	snap := risk.Snapshot{
		State:      risk.StateActive,
		HaltReason: risk.HaltReason(gs.HaltReason),
		Portfolio: risk.PortfolioState{
			Equity:             gs.Equity,
			PeakEquity:         gs.PeakEquity,
			SessionStartEquity: gs.SessionStartEquity,
			DailyPnL:           gs.DailyPnL,
			ConsecutiveLosses:  gs.ConsecutiveLosses,
			ClosedTrades:       trades,
		},
	}
	if gs.State == risk.StateHalted.String() {
		snap.State = risk.StateHalted
	}
	return snap
}
