package server

import (
	"context"
	"time"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
)

type RequestRecorder interface {
	RequestHandled(procedure, code string, took time.Duration)
}

// NewObservabilityInterceptor times every unary call, records it and logs
// the outcome with the request-scoped logger when there is one.
func NewObservabilityInterceptor(recorder RequestRecorder, logger zerolog.Logger) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)
			took := time.Since(start)

			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			procedure := req.Spec().Procedure
			recorder.RequestHandled(procedure, code, took)

			l := zerolog.Ctx(ctx)
			if l.GetLevel() == zerolog.Disabled {
				l = &logger
			}
			switch {
			case err == nil:
				l.Debug().Str("procedure", procedure).Dur("took", took).Msg("rpc handled")
			case connect.CodeOf(err) == connect.CodeInternal:
				l.Error().Err(err).Str("procedure", procedure).Str("code", code).Dur("took", took).Msg("rpc failed")
			default:
				l.Info().Err(err).Str("procedure", procedure).Str("code", code).Dur("took", took).Msg("rpc rejected")
			}
			return res, err
		}
	}
}
