package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"schooladmin/backend/services/admin-gateway/internal/models"
	"schooladmin/backend/services/admin-gateway/internal/reconcile"
)

// DefaultFeeAmount is charged when a student's class fee cannot be determined.
const DefaultFeeAmount = 10000

// Status of transactions created by the gateway.
const recordedStatus = "SUCCESS"

var (
	// ErrNoSessionSelected blocks every session-scoped read and write.
	ErrNoSessionSelected = errors.New("service: no session selected")
	// ErrFeeNotFound is returned when a payment targets a fee the student does not have.
	ErrFeeNotFound = errors.New("service: fee not found")
	// ErrUpstream wraps backend failures so handlers can offer a retry.
	ErrUpstream = errors.New("service: backend request failed")
)

// SessionSource exposes each administrator's current session selection.
type SessionSource interface {
	Selected(ctx context.Context, user string) (models.Session, bool)
}

// FeesBackend is the part of the school backend the fee views use.
type FeesBackend interface {
	ListFees(ctx context.Context, userID, sessionID string) ([]models.Fee, error)
	CreateFee(ctx context.Context, req models.CreateFeeRequest) (*models.Fee, error)
	ListTransactions(ctx context.Context, sessionID string) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, req models.CreateTransactionRequest) (*models.Transaction, error)
}

// StudentsBackend looks up students and their classes.
type StudentsBackend interface {
	GetStudent(ctx context.Context, userID string) (*models.Student, error)
	ListClasses(ctx context.Context, sessionID string) ([]models.Class, error)
}

// PaymentRecorder counts recorded and rejected payments.
type PaymentRecorder interface {
	PaymentRecorded()
	PaymentRejected(reason string)
}

// FeesService assembles the fee view of a student and records payments against it.
type FeesService struct {
	sessions   SessionSource
	fees       FeesBackend
	students   StudentsBackend
	validate   *Validator
	recorder   PaymentRecorder
	logger     *zap.Logger
	defaultFee decimal.Decimal
	now        func() time.Time
	ensure     singleflight.Group
}

// Options tweaks FeesService construction.
type Options struct {
	DefaultFeeAmount int64
	Recorder         PaymentRecorder
}

// NewFeesService builds service.
func NewFeesService(sessions SessionSource, fees FeesBackend, students StudentsBackend, validate *Validator, logger *zap.Logger, opts Options) *FeesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	amount := opts.DefaultFeeAmount
	if amount <= 0 {
		amount = DefaultFeeAmount
	}
	return &FeesService{
		sessions:   sessions,
		fees:       fees,
		students:   students,
		validate:   validate,
		recorder:   opts.Recorder,
		logger:     logger,
		defaultFee: decimal.NewFromInt(amount),
		now:        time.Now,
	}
}

// StudentFeesView is everything the fee detail screen renders.
type StudentFeesView struct {
	Session      models.Session
	Student      *models.Student
	Summary      reconcile.Summary
	Transactions []models.Transaction
}

// scope captures admin's selected session once so every fetch of one call shares it.
func (s *FeesService) scope(ctx context.Context, admin string) (models.Session, error) {
	session, ok := s.sessions.Selected(ctx, admin)
	if !ok {
		return models.Session{}, ErrNoSessionSelected
	}
	return session, nil
}

// StudentFees loads the student's fees, transactions and record for the session admin
// has selected and reconciles them.
func (s *FeesService) StudentFees(ctx context.Context, admin, studentID string) (*StudentFeesView, error) {
	session, err := s.scope(ctx, admin)
	if err != nil {
		return nil, err
	}
	return s.studentFees(ctx, session, studentID, true)
}

func (s *FeesService) studentFees(ctx context.Context, session models.Session, studentID string, withStudent bool) (*StudentFeesView, error) {
	var (
		fees    []models.Fee
		txs     []models.Transaction
		student *models.Student
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		fees, err = s.fees.ListFees(gctx, studentID, session.ID)
		return err
	})
	g.Go(func() error {
		var err error
		txs, err = s.fees.ListTransactions(gctx, session.ID)
		return err
	})
	if withStudent {
		g.Go(func() error {
			var err error
			student, err = s.students.GetStudent(gctx, studentID)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Warn("failed to load student fees",
			zap.String("student_id", studentID),
			zap.String("session_id", session.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	own := reconcile.ForUser(txs, models.ID(studentID))
	return &StudentFeesView{
		Session:      session,
		Student:      student,
		Summary:      reconcile.Reconcile(fees, own),
		Transactions: own,
	}, nil
}

// PaymentInput is a payment entered by an administrator.
type PaymentInput struct {
	FeeID       models.ID     `json:"feesId" validate:"required"`
	Amount      models.Amount `json:"amount" validate:"-"`
	PaymentMode string        `json:"paymentMode" validate:"required,max=32"`
	Description string        `json:"description" validate:"max=255"`
	Remarks     string        `json:"remarks" validate:"max=500"`
}

// RecordPayment appends one transaction for the student after checking that the amount
// is positive and does not exceed what the targeted fee still owes. Fee records are not
// modified; the next reconciliation picks the transaction up.
func (s *FeesService) RecordPayment(ctx context.Context, admin, studentID string, in PaymentInput) (*models.Transaction, error) {
	session, err := s.scope(ctx, admin)
	if err != nil {
		return nil, err
	}
	if err := s.validate.Struct(in); err != nil {
		s.rejected("invalid_input")
		return nil, err
	}
	if !in.Amount.IsPositive() {
		s.rejected("invalid_amount")
		return nil, reconcile.ErrInvalidAmount
	}

	view, err := s.studentFees(ctx, session, studentID, false)
	if err != nil {
		return nil, err
	}
	var target *reconcile.FeeLine
	for i := range view.Summary.Fees {
		if view.Summary.Fees[i].Fee.FeesID == in.FeeID {
			target = &view.Summary.Fees[i]
			break
		}
	}
	if target == nil {
		s.rejected("unknown_fee")
		return nil, ErrFeeNotFound
	}
	if err := reconcile.ValidatePayment(in.Amount.Decimal, target.Remaining); err != nil {
		s.rejected("over_limit")
		return nil, err
	}

	req := models.CreateTransactionRequest{
		UserID:      studentID,
		SessionID:   session.ID,
		Amount:      in.Amount,
		PaymentMode: in.PaymentMode,
		Status:      recordedStatus,
		PaymentDate: s.now().Format("2006-01-02"),
		Description: paymentDescription(target.Fee.FeesID, in.Description),
		Remarks:     in.Remarks,
	}
	tx, err := s.fees.CreateTransaction(ctx, req)
	if err != nil {
		s.logger.Error("failed to record payment",
			zap.String("student_id", studentID),
			zap.String("fee_id", target.Fee.FeesID.String()),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if s.recorder != nil {
		s.recorder.PaymentRecorded()
	}
	s.logger.Info("payment recorded",
		zap.String("admin_id", admin),
		zap.String("student_id", studentID),
		zap.String("session_id", session.ID),
		zap.String("fee_id", target.Fee.FeesID.String()),
		zap.String("amount", in.Amount.String()),
	)
	return tx, nil
}

// paymentDescription always names the fee so reconciliation matches the transaction to it.
func paymentDescription(feeID models.ID, note string) string {
	note = strings.TrimSpace(note)
	base := "Payment for Fee ID: " + feeID.String()
	if note == "" {
		return base
	}
	return base + " - " + note
}

// EnsureResult reports what EnsureFeeStructure did.
type EnsureResult struct {
	Created bool
	Fees    []models.Fee
}

// EnsureFeeStructure creates the student's fee record for the session admin has selected
// when none exists. The amount is the fee of the student's class, or the configured default
// when the class or its fee is unknown. Calling it again is a no-op, and concurrent calls
// for the same student and session share one check-and-create.
func (s *FeesService) EnsureFeeStructure(ctx context.Context, admin, studentID string) (*EnsureResult, error) {
	session, err := s.scope(ctx, admin)
	if err != nil {
		return nil, err
	}

	key := session.ID + "/" + studentID
	v, err, _ := s.ensure.Do(key, func() (interface{}, error) {
		return s.ensureFees(context.WithoutCancel(ctx), session, studentID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*EnsureResult), nil
}

func (s *FeesService) ensureFees(ctx context.Context, session models.Session, studentID string) (*EnsureResult, error) {
	fees, err := s.fees.ListFees(ctx, studentID, session.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}
	if len(fees) > 0 {
		return &EnsureResult{Fees: fees}, nil
	}

	amount := s.classFee(ctx, session, studentID)
	fee, err := s.fees.CreateFee(ctx, models.CreateFeeRequest{
		UserID:        studentID,
		SessionID:     session.ID,
		Amount:        models.AmountOf(amount),
		PaymentStatus: models.FeeStatusUnpaid,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	s.logger.Info("fee structure created",
		zap.String("student_id", studentID),
		zap.String("session_id", session.ID),
		zap.String("amount", amount.String()),
	)
	return &EnsureResult{Created: true, Fees: []models.Fee{*fee}}, nil
}

// classFee never fails: lookup errors fall back to the default amount.
func (s *FeesService) classFee(ctx context.Context, session models.Session, studentID string) decimal.Decimal {
	student, err := s.students.GetStudent(ctx, studentID)
	if err != nil {
		s.logger.Warn("student lookup failed, using default fee", zap.String("student_id", studentID), zap.Error(err))
		return s.defaultFee
	}
	classes, err := s.students.ListClasses(ctx, session.ID)
	if err != nil {
		s.logger.Warn("class lookup failed, using default fee", zap.String("session_id", session.ID), zap.Error(err))
		return s.defaultFee
	}

	if fee, ok := matchClassFee(classes, student); ok {
		return fee
	}
	return s.defaultFee
}

func matchClassFee(classes []models.Class, student *models.Student) (decimal.Decimal, bool) {
	if !student.ClassID.IsZero() {
		for _, c := range classes {
			if c.Key() == student.ClassID && c.Fee().IsPositive() {
				return c.Fee().Decimal, true
			}
		}
	}
	name := strings.TrimSpace(student.ClassName)
	if name == "" {
		return decimal.Zero, false
	}
	for _, c := range classes {
		if strings.EqualFold(strings.TrimSpace(c.Label()), name) && c.Fee().IsPositive() {
			return c.Fee().Decimal, true
		}
	}
	return decimal.Zero, false
}

func (s *FeesService) rejected(reason string) {
	if s.recorder != nil {
		s.recorder.PaymentRejected(reason)
	}
}
