package service

import (
	"context"
	"fmt"

	"github.com/nathanj/homeledger/internal/database/repository"
)

// Action is an operator decision over the current step.
type Action int

const (
	// ActionSkip accepts the step as shown: the match list is left alone,
	// or a no-match record is dropped. Nothing is persisted.
	ActionSkip Action = iota
	// ActionReconcile marks the match at Index reconciled.
	ActionReconcile
	// ActionIgnore claims the match at Index without touching it.
	ActionIgnore
	// ActionNew persists the candidate (with optional overrides),
	// expanding split records into a group.
	ActionNew
	// ActionTemplate clones Template with the incoming amount/date/account.
	ActionTemplate
)

// NewInput carries the operator's overrides for a create-new decision.
type NewInput struct {
	Category        *repository.Category
	TransferAccount *repository.ExternalAccount
	Reconciled      bool
	Description     string
	Notes           string
}

// Decision is one operator answer. Index selects a match for
// ActionReconcile/ActionIgnore; Template is required for ActionTemplate.
type Decision struct {
	Action   Action
	Index    int
	New      *NewInput
	Template *repository.Transaction
}

// Step is one incoming record awaiting a decision: the in-memory candidate
// built from it and the stored transactions it could correspond to. An
// AutoConfirmed step was resolved without a prompt (its single match was
// already reconciled) and must not receive a decision.
type Step struct {
	Record        Record
	Candidate     repository.Transaction
	Matches       []repository.Transaction
	AutoConfirmed bool
}

// Outcome reports what a decision persisted.
type Outcome struct {
	Created    []repository.Transaction
	Reconciled *repository.Transaction
}

// Session sequences operator decisions over one batch of incoming records.
// A stored transaction claimed by one record (reconciled, ignored or
// auto-confirmed) lands in the excluded set and cannot be matched by a
// later near-identical record in the same run. The set lives and dies
// with the session; it is never persisted.
type Session struct {
	Matcher      *Matcher
	Splits       *SplitResolver
	Templates    *TemplateSearch
	Transactions TransactionStore

	Account repository.ExternalAccount

	records  []Record
	pos      int
	excluded map[string]struct{}
	step     *Step
}

// NewSession starts a batch run over records for account.
func NewSession(account repository.ExternalAccount, records []Record, m *Matcher, sp *SplitResolver, ts *TemplateSearch, store TransactionStore) *Session {
	return &Session{
		Matcher:      m,
		Splits:       sp,
		Templates:    ts,
		Transactions: store,
		Account:      account,
		records:      records,
		excluded:     make(map[string]struct{}),
	}
}

// Next returns the next step, or nil when the batch is exhausted. A
// pending step is returned again until Apply resolves it. A single
// already-reconciled match is claimed on the spot and comes back with
// AutoConfirmed set; call Next again to advance past it.
func (s *Session) Next(ctx context.Context) (*Step, error) {
	if s.step != nil {
		return s.step, nil
	}
	if s.pos >= len(s.records) {
		return nil, nil
	}

	rec := s.records[s.pos]
	s.pos++
	cand, matches, err := s.Matcher.Find(ctx, s.Account, rec, s.excluded)
	if err != nil {
		return nil, err
	}
	step := &Step{Record: rec, Candidate: cand, Matches: matches}

	if len(matches) == 1 && matches[0].Reconciled {
		step.AutoConfirmed = true
		s.excluded[matches[0].ID] = struct{}{}
		return step, nil
	}

	s.step = step
	return step, nil
}

// Apply resolves the pending step with d. ErrInvalidChoice leaves the
// step pending so the caller can re-prompt; any other error aborts the
// batch (split resolution failures are deliberately fatal for the file).
func (s *Session) Apply(ctx context.Context, d Decision) (Outcome, error) {
	var out Outcome
	if s.step == nil {
		return out, fmt.Errorf("no step pending a decision")
	}
	step := s.step

	if len(step.Matches) > 0 {
		switch d.Action {
		case ActionSkip:
			// accept the list as shown
		case ActionReconcile, ActionIgnore:
			if d.Index < 0 || d.Index >= len(step.Matches) {
				return out, ErrInvalidChoice
			}
			chosen := step.Matches[d.Index]
			if d.Action == ActionReconcile && !chosen.Reconciled {
				chosen.Reconciled = true
				if err := s.Transactions.Update(ctx, chosen); err != nil {
					return out, fmt.Errorf("mark reconciled: %w", err)
				}
				out.Reconciled = &chosen
			}
			// claimed either way
			s.excluded[chosen.ID] = struct{}{}
		default:
			return out, ErrInvalidChoice
		}
		s.step = nil
		return out, nil
	}

	switch d.Action {
	case ActionSkip:
	case ActionNew:
		cand := step.Candidate
		if d.New != nil {
			if d.New.Category != nil {
				cand.CategoryID = &d.New.Category.ID
			}
			if d.New.TransferAccount != nil {
				cand.TransferAccountID = &d.New.TransferAccount.ID
			}
			cand.Reconciled = d.New.Reconciled
			if d.New.Description != "" {
				cand.Description = d.New.Description
			}
			if d.New.Notes != "" {
				notes := d.New.Notes
				cand.Notes = &notes
			}
		}
		if len(step.Record.Splits) > 0 {
			children, err := s.Splits.Resolve(ctx, cand, step.Record.Splits)
			if err != nil {
				return out, err
			}
			if err := s.Splits.Persist(ctx, s.Transactions, cand, children); err != nil {
				return out, err
			}
			cand.CategoryID = nil
			out.Created = append(out.Created, cand)
			out.Created = append(out.Created, children...)
		} else {
			if err := s.Transactions.Insert(ctx, cand); err != nil {
				return out, fmt.Errorf("insert transaction: %w", err)
			}
			out.Created = append(out.Created, cand)
		}
		s.excluded[cand.ID] = struct{}{}
	case ActionTemplate:
		if d.Template == nil {
			return out, ErrInvalidChoice
		}
		clone, err := s.Templates.CloneFromTemplate(ctx, *d.Template, s.Account, step.Candidate.Date, step.Candidate.Amount)
		if err != nil {
			return out, err
		}
		if err := s.Transactions.Insert(ctx, clone); err != nil {
			return out, fmt.Errorf("insert cloned transaction: %w", err)
		}
		out.Created = append(out.Created, clone)
		s.excluded[clone.ID] = struct{}{}
	default:
		return out, ErrInvalidChoice
	}

	s.step = nil
	return out, nil
}
