package store

import "context"

// WithSessionState overrides where a Store keeps its deny-list and failure
// counters, e.g. Redis in front of a SQLite store. Transactions opened from
// the returned Store see the same override; writes to the session state are
// not part of the SQL transaction.
func WithSessionState(s Store, state SessionState) Store {
	if state == nil {
		return s
	}
	return &sessionOverride{Store: s, state: state}
}

type sessionOverride struct {
	Store
	state SessionState
}

func (o *sessionOverride) RevokedTokens() RevokedTokens     { return o.state.RevokedTokens() }
func (o *sessionOverride) FailureCounters() FailureCounters { return o.state.FailureCounters() }

func (o *sessionOverride) Tx(ctx context.Context) (Tx, error) {
	tx, err := o.Store.Tx(ctx)
	if err != nil {
		return nil, err
	}
	return &txOverride{innerTx: tx, state: o.state}, nil
}

func (o *sessionOverride) WithTx(ctx context.Context, fn func(tx Tx) error) error {
	return o.Store.WithTx(ctx, func(tx Tx) error {
		return fn(&txOverride{innerTx: tx, state: o.state})
	})
}

// innerTx lets txOverride embed a Tx without a field named Tx hiding the
// Tx method promoted from Store.
type innerTx = Tx

type txOverride struct {
	innerTx
	state SessionState
}

var (
	_ Store = (*sessionOverride)(nil)
	_ Tx    = (*txOverride)(nil)
)

func (t *txOverride) RevokedTokens() RevokedTokens     { return t.state.RevokedTokens() }
func (t *txOverride) FailureCounters() FailureCounters { return t.state.FailureCounters() }

// PingSessionState checks the overriding session state backend of s, if it
// has one that can be pinged. State kept in the SQL store is covered by
// Store.Ping.
func PingSessionState(ctx context.Context, s Store) error {
	o, ok := s.(*sessionOverride)
	if !ok {
		return nil
	}
	if p, ok := o.state.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}
