package service

import (
	"errors"

	"github.com/evyataryagoni/iplocator/internal/apperror"
	"github.com/evyataryagoni/iplocator/internal/geoclient"
	"github.com/evyataryagoni/iplocator/internal/logger"
	"github.com/evyataryagoni/iplocator/internal/messages"
	"github.com/evyataryagoni/iplocator/internal/store"
)

// fromStore converts a store failure into an application error.
// notFound is the message used for store.ErrNotFound and conflict the one
// used for store.ErrDuplicate; anything else is Internal.
func fromStore(err error, msgs *messages.Catalog, notFound, conflict string) error {
	if err == nil {
		return nil
	}

	var appErr *apperror.Error
	if errors.As(err, &appErr) {
		return err
	}

	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperror.Wrap(apperror.NotFound, notFound, err)
	case errors.Is(err, store.ErrDuplicate):
		return apperror.Wrap(apperror.Conflict, conflict, err)
	default:
		return apperror.Wrap(apperror.Internal, msgs.Format(messages.Internal), err)
	}
}

// fromUpstream converts a geoclient failure into an application error
func fromUpstream(err error, ip string, msgs *messages.Catalog) error {
	switch {
	case errors.Is(err, geoclient.ErrRateLimited):
		return apperror.Wrap(apperror.RateLimited, msgs.Format(messages.UpstreamRateLimit), err)
	case errors.Is(err, geoclient.ErrRejected):
		return apperror.Wrap(apperror.InvalidInput, msgs.Format(messages.InvalidUpstreamIP, ip), err)
	case errors.Is(err, geoclient.ErrIncomplete):
		return apperror.Wrap(apperror.InvalidInput, msgs.Format(messages.IncompleteLocation), err)
	default:
		// timeouts included
		return apperror.Wrap(apperror.Internal, msgs.Format(messages.UpstreamFailure), err)
	}
}

// logFailure logs client errors at warn and everything else at error
func logFailure(log *logger.Logger, err error, msg string) {
	if apperror.KindOf(err) == apperror.Internal {
		log.Error().Err(err).Msg(msg)
		return
	}
	log.Warn().Err(err).Msg(msg)
}

func isNotFound(err error) bool {
	return errors.Is(err, store.ErrNotFound)
}
