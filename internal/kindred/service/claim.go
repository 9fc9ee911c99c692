package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"strings"

	"github.com/AvallenSolutions/kindredcollective/internal/kindred/domain"
	"github.com/AvallenSolutions/kindredcollective/internal/kindred/store"
	"github.com/AvallenSolutions/kindredcollective/pkg/cryptox"
	"github.com/AvallenSolutions/kindredcollective/pkg/idx"
	"github.com/AvallenSolutions/kindredcollective/pkg/mailx"
	"github.com/AvallenSolutions/kindredcollective/pkg/slogx"
)

var (
	ErrSupplierAlreadyClaimed = errors.New("supplier has already been claimed")
	ErrClaimAlreadyPending    = errors.New("a pending claim already exists")
	ErrAlreadyOwnsSupplier    = errors.New("user already owns a supplier")
	ErrClaimNotFound          = errors.New("no pending claim found")
	ErrInvalidClaimCode       = errors.New("Invalid verification code")
	ErrClaimLockedOut         = errors.New("too many failed attempts; the claim has been rejected")
	ErrClaimNotPending        = errors.New("claim is not pending")
	ErrInvalidCompanyEmail    = errors.New("a valid company email address is required")
)

const claimCodeLength = 6

// ClaimService runs the supplier takeover flow: a user asks to claim a
// seeded supplier, proves control of a company mailbox with an emailed code,
// and on success becomes the supplier's owner.
type ClaimService struct {
	Store  store.Store
	Mailer mailx.Mailer

	// DevMode echoes the verification code in the initiate response instead
	// of relying on email, for local development only.
	DevMode bool
}

// ClaimReceipt is what Initiate hands back to the HTTP layer.
type ClaimReceipt struct {
	ClaimID string
	// Code is only populated in dev mode.
	Code string
}

// Initiate opens a claim on the supplier identified by slug and emails a
// verification code to the given company address.
func (s *ClaimService) Initiate(ctx context.Context, slug, userID, companyEmail string) (ClaimReceipt, error) {
	log := slogx.FromContext(ctx)

	companyEmail = strings.ToLower(strings.TrimSpace(companyEmail))
	if companyEmail == "" || !strings.Contains(companyEmail, "@") {
		return ClaimReceipt{}, ErrInvalidCompanyEmail
	}

	sup, err := s.Store.Suppliers().GetSupplierBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ClaimReceipt{}, ErrSupplierNotFound
		}
		return ClaimReceipt{}, err
	}
	if sup.ClaimStatus == domain.ClaimClaimed || sup.UserID != nil {
		return ClaimReceipt{}, ErrSupplierAlreadyClaimed
	}

	// One open claim per user at a time, anywhere.
	open, err := s.Store.SupplierClaims().GetPendingClaimsByUser(ctx, userID)
	if err != nil {
		return ClaimReceipt{}, err
	}
	if len(open) > 0 {
		return ClaimReceipt{}, ErrClaimAlreadyPending
	}

	// A user who already owns a supplier cannot claim another.
	if _, err := s.Store.Suppliers().GetSupplierByUserID(ctx, userID); err == nil {
		return ClaimReceipt{}, ErrAlreadyOwnsSupplier
	} else if !errors.Is(err, store.ErrNotFound) {
		return ClaimReceipt{}, err
	}

	code, err := cryptox.GenerateNumericCode(claimCodeLength)
	if err != nil {
		return ClaimReceipt{}, err
	}

	claim := domain.SupplierClaim{
		ID:               idx.New().String(),
		SupplierID:       sup.ID,
		UserID:           userID,
		Status:           domain.ClaimStatePending,
		VerificationCode: code,
		CompanyEmail:     companyEmail,
	}

	// The claim row and the supplier's PENDING flip land together.
	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.SupplierClaims().CreateSupplierClaim(ctx, claim); err != nil {
			return err
		}
		return tx.Suppliers().SetClaimState(ctx, sup.ID, domain.ClaimPending, nil)
	})
	if err != nil {
		return ClaimReceipt{}, err
	}

	if err := s.Mailer.SendClaimCode(ctx, companyEmail, sup.Name, code); err != nil {
		log.Warn("failed to send claim verification code",
			slog.String("claim_id", claim.ID),
			slog.Any("error", err),
		)
	}

	log.Info("supplier claim initiated",
		slog.String("claim_id", claim.ID),
		slog.String("supplier_id", sup.ID),
		slog.String("user_id", userID),
	)

	receipt := ClaimReceipt{ClaimID: claim.ID}
	if s.DevMode {
		receipt.Code = code
	}
	return receipt, nil
}

// Verify checks the emailed code. A correct code completes the takeover; a
// wrong one burns an attempt, and the fifth failure rejects the claim and
// releases the supplier.
func (s *ClaimService) Verify(ctx context.Context, slug, userID, code string) (domain.Supplier, error) {
	log := slogx.FromContext(ctx)

	sup, err := s.Store.Suppliers().GetSupplierBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Supplier{}, ErrSupplierNotFound
		}
		return domain.Supplier{}, err
	}

	claim, err := s.Store.SupplierClaims().GetPendingClaim(ctx, sup.ID, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return domain.Supplier{}, ErrClaimNotFound
		}
		return domain.Supplier{}, err
	}

	if subtle.ConstantTimeCompare([]byte(claim.VerificationCode), []byte(code)) != 1 {
		claim, err = s.Store.SupplierClaims().IncrementAttempts(ctx, claim.ID)
		if err != nil {
			return domain.Supplier{}, err
		}
		if claim.Attempts >= domain.MaxClaimVerifyAttempts {
			// Terminal: reject the claim and put the supplier back on the market.
			err := s.Store.WithTx(ctx, func(tx store.Tx) error {
				if err := tx.SupplierClaims().SetStatus(ctx, claim.ID, domain.ClaimStateRejected); err != nil {
					return err
				}
				return tx.Suppliers().SetClaimState(ctx, sup.ID, domain.ClaimUnclaimed, nil)
			})
			if err != nil {
				return domain.Supplier{}, err
			}
			log.Warn("supplier claim locked out",
				slog.String("claim_id", claim.ID),
				slog.Int("attempts", claim.Attempts),
			)
			return domain.Supplier{}, ErrClaimLockedOut
		}
		return domain.Supplier{}, ErrInvalidClaimCode
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.SupplierClaims().SetStatus(ctx, claim.ID, domain.ClaimStateClaimed); err != nil {
			return err
		}
		return tx.Suppliers().SetClaimState(ctx, sup.ID, domain.ClaimClaimed, &userID)
	})
	if err != nil {
		return domain.Supplier{}, err
	}

	log.Info("supplier claimed",
		slog.String("claim_id", claim.ID),
		slog.String("supplier_id", sup.ID),
		slog.String("user_id", userID),
	)

	return s.Store.Suppliers().GetSupplierByID(ctx, sup.ID)
}

// AdminResolve settles a pending claim out of band: approve hands the
// supplier to the claimant, reject releases it.
func (s *ClaimService) AdminResolve(ctx context.Context, claimID string, approve bool) error {
	log := slogx.FromContext(ctx)

	claim, err := s.Store.SupplierClaims().GetSupplierClaimByID(ctx, claimID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrClaimNotFound
		}
		return err
	}
	if claim.Status != domain.ClaimStatePending {
		return ErrClaimNotPending
	}

	err = s.Store.WithTx(ctx, func(tx store.Tx) error {
		if approve {
			if err := tx.SupplierClaims().SetStatus(ctx, claim.ID, domain.ClaimStateClaimed); err != nil {
				return err
			}
			return tx.Suppliers().SetClaimState(ctx, claim.SupplierID, domain.ClaimClaimed, &claim.UserID)
		}
		if err := tx.SupplierClaims().SetStatus(ctx, claim.ID, domain.ClaimStateRejected); err != nil {
			return err
		}
		return tx.Suppliers().SetClaimState(ctx, claim.SupplierID, domain.ClaimUnclaimed, nil)
	})
	if err != nil {
		return err
	}

	log.Info("supplier claim resolved by admin",
		slog.String("claim_id", claim.ID),
		slog.Bool("approved", approve),
	)
	return nil
}
