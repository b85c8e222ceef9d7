package server

import (
	"context"
	"errors"
	"net/http"
	"ranked-typing/internal/domain"
	"ranked-typing/internal/matchmaking"
	"ranked-typing/internal/service"
	"ranked-typing/internal/wordlist"

	"connectrpc.com/connect"
	"github.com/samber/lo"
)

const (
	RankedServicePath = "/ranked.v1.RankedService/"

	JoinQueueProcedure         = RankedServicePath + "JoinQueue"
	LeaveQueueProcedure        = RankedServicePath + "LeaveQueue"
	QueueStatusProcedure       = RankedServicePath + "QueueStatus"
	PollPairingProcedure       = RankedServicePath + "PollPairing"
	SubmitMatchResultProcedure = RankedServicePath + "SubmitMatchResult"
	LeaderboardProcedure       = RankedServicePath + "Leaderboard"
	PlayerStatsProcedure       = RankedServicePath + "PlayerStats"
	WordListProcedure          = RankedServicePath + "WordList"
)

type matchmaker interface {
	Join(ctx context.Context, uid string) (*matchmaking.JoinResult, error)
	Leave(uid string)
	Status() []domain.QueueEntry
	Pairing(uid string) *domain.Pairing
}

type resultSubmitter interface {
	SubmitResult(ctx context.Context, in service.SubmitInput) (*service.SubmitOutcome, error)
}

type playerReader interface {
	Leaderboard(ctx context.Context, limit int) ([]service.RankedPlayer, error)
	Stats(ctx context.Context, uid string) (*service.PlayerStats, error)
}

type wordGenerator interface {
	Generate(seed string) []string
}

type RankedServer struct {
	queue   matchmaker
	results resultSubmitter
	players playerReader
	words   wordGenerator
}

func NewRankedServer(queue *matchmaking.Queue, results *service.ResultService, players *service.PlayerService, words *wordlist.Generator) *RankedServer {
	return &RankedServer{queue: queue, results: results, players: players, words: words}
}

// Handler mounts every procedure under RankedServicePath.
func (s *RankedServer) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{connect.WithCodec(jsonCodec{})}, opts...)

	mux := http.NewServeMux()
	mux.Handle(JoinQueueProcedure, connect.NewUnaryHandler(JoinQueueProcedure, s.JoinQueue, opts...))
	mux.Handle(LeaveQueueProcedure, connect.NewUnaryHandler(LeaveQueueProcedure, s.LeaveQueue, opts...))
	mux.Handle(QueueStatusProcedure, connect.NewUnaryHandler(QueueStatusProcedure, s.QueueStatus, opts...))
	mux.Handle(PollPairingProcedure, connect.NewUnaryHandler(PollPairingProcedure, s.PollPairing, opts...))
	mux.Handle(SubmitMatchResultProcedure, connect.NewUnaryHandler(SubmitMatchResultProcedure, s.SubmitMatchResult, opts...))
	mux.Handle(LeaderboardProcedure, connect.NewUnaryHandler(LeaderboardProcedure, s.Leaderboard, opts...))
	mux.Handle(PlayerStatsProcedure, connect.NewUnaryHandler(PlayerStatsProcedure, s.PlayerStats, opts...))
	mux.Handle(WordListProcedure, connect.NewUnaryHandler(WordListProcedure, s.WordList, opts...))
	return RankedServicePath, mux
}

func (s *RankedServer) JoinQueue(ctx context.Context, req *connect.Request[JoinQueueRequest]) (*connect.Response[MatchResponse], error) {
	if req.Msg.UID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, service.ErrMissingUID)
	}

	res, err := s.queue.Join(ctx, req.Msg.UID)
	if err != nil {
		return nil, toConnectError(err)
	}
	return connect.NewResponse(s.matchResponse(req.Msg.UID, res.Status, res.Pairing)), nil
}

func (s *RankedServer) LeaveQueue(ctx context.Context, req *connect.Request[LeaveQueueRequest]) (*connect.Response[LeaveQueueResponse], error) {
	if req.Msg.UID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, service.ErrMissingUID)
	}

	s.queue.Leave(req.Msg.UID)
	return connect.NewResponse(&LeaveQueueResponse{OK: true}), nil
}

func (s *RankedServer) QueueStatus(ctx context.Context, req *connect.Request[QueueStatusRequest]) (*connect.Response[QueueStatusResponse], error) {
	entries := lo.Map(s.queue.Status(), func(e domain.QueueEntry, _ int) QueueEntry {
		return QueueEntry{UID: e.UID, Rating: e.Rating, EnqueuedAt: e.EnqueuedAt}
	})
	return connect.NewResponse(&QueueStatusResponse{Entries: entries}), nil
}

// PollPairing lets a waiting player pick up a match formed by its opponent.
func (s *RankedServer) PollPairing(ctx context.Context, req *connect.Request[PollPairingRequest]) (*connect.Response[MatchResponse], error) {
	if req.Msg.UID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, service.ErrMissingUID)
	}

	status := matchmaking.StatusWaiting
	pairing := s.queue.Pairing(req.Msg.UID)
	if pairing != nil {
		status = matchmaking.StatusMatched
	}
	return connect.NewResponse(s.matchResponse(req.Msg.UID, status, pairing)), nil
}

func (s *RankedServer) SubmitMatchResult(ctx context.Context, req *connect.Request[SubmitMatchResultRequest]) (*connect.Response[SubmitMatchResultResponse], error) {
	out, err := s.results.SubmitResult(ctx, service.SubmitInput{
		MatchID:        req.Msg.MatchID,
		PlayerUID:      req.Msg.PlayerUID,
		PlayerResult:   req.Msg.PlayerResult,
		OpponentUID:    req.Msg.OpponentUID,
		OpponentResult: req.Msg.OpponentResult,
		WordListSeed:   req.Msg.WordListSeed,
	})
	if err != nil {
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&SubmitMatchResultResponse{
		PlayerRatingChange:   out.PlayerDelta,
		OpponentRatingChange: out.OpponentDelta,
		NewPlayerRating:      out.NewPlayerRating,
		NewOpponentRating:    out.NewOpponentRating,
		WinnerUID:            out.WinnerUID,
		IsValid:              out.IsValid,
		RatingApplied:        out.RatingApplied,
	}), nil
}

func (s *RankedServer) Leaderboard(ctx context.Context, req *connect.Request[LeaderboardRequest]) (*connect.Response[LeaderboardResponse], error) {
	players, err := s.players.Leaderboard(ctx, req.Msg.Limit)
	if err != nil {
		return nil, toConnectError(err)
	}

	resp := &LeaderboardResponse{Players: make([]PlayerProfile, 0, len(players))}
	for _, p := range players {
		resp.Players = append(resp.Players, PlayerProfile{
			UID:         p.UID,
			Rating:      p.Rating,
			RankTier:    p.Tier,
			GamesPlayed: p.GamesPlayed,
			Wins:        p.Wins,
			Losses:      p.Losses,
		})
	}
	return connect.NewResponse(resp), nil
}

func (s *RankedServer) PlayerStats(ctx context.Context, req *connect.Request[PlayerStatsRequest]) (*connect.Response[PlayerStatsResponse], error) {
	stats, err := s.players.Stats(ctx, req.Msg.UID)
	if err != nil {
		return nil, toConnectError(err)
	}

	p := stats.Profile
	resp := &PlayerStatsResponse{
		Profile: PlayerProfile{
			UID:         p.UID,
			Rating:      p.Rating,
			RankTier:    p.Tier,
			GamesPlayed: p.GamesPlayed,
			Wins:        p.Wins,
			Losses:      p.Losses,
			KFactor:     p.KFactor,
			LastMatchAt: p.LastMatchAt,
		},
		MatchHistory: make([]HistoryEntry, 0, len(stats.History)),
	}
	for _, h := range stats.History {
		resp.MatchHistory = append(resp.MatchHistory, HistoryEntry{
			MatchID:        h.MatchID,
			OpponentUID:    h.OpponentUID,
			RatingBefore:   h.RatingBefore,
			RatingAfter:    h.RatingAfter,
			RatingChange:   h.RatingChange,
			Outcome:        string(h.Outcome),
			PlayerResult:   h.PlayerResult,
			OpponentResult: h.OpponentResult,
			WordListSeed:   h.WordListSeed,
			PlayedAt:       h.PlayedAt,
			IsValid:        h.IsValid,
			RatingApplied:  h.RatingApplied,
		})
	}
	return connect.NewResponse(resp), nil
}

func (s *RankedServer) WordList(ctx context.Context, req *connect.Request[WordListRequest]) (*connect.Response[WordListResponse], error) {
	if req.Msg.Seed == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("seed is required"))
	}
	return connect.NewResponse(&WordListResponse{Words: s.words.Generate(req.Msg.Seed)}), nil
}

func (s *RankedServer) matchResponse(uid string, status matchmaking.Status, p *domain.Pairing) *MatchResponse {
	resp := &MatchResponse{Status: string(status)}
	if p != nil {
		resp.MatchID = p.MatchID
		resp.WordListSeed = p.Seed
		resp.OpponentUID = p.Opponent(uid)
		resp.WordList = s.words.Generate(p.Seed)
	}
	return resp
}

func toConnectError(err error) error {
	switch {
	case errors.Is(err, service.ErrInvalidResult), errors.Is(err, service.ErrMissingUID):
		return connect.NewError(connect.CodeInvalidArgument, err)
	case errors.Is(err, service.ErrDuplicateMatch):
		return connect.NewError(connect.CodeAlreadyExists, err)
	case errors.Is(err, context.DeadlineExceeded):
		return connect.NewError(connect.CodeDeadlineExceeded, err)
	case errors.Is(err, context.Canceled):
		return connect.NewError(connect.CodeCanceled, err)
	default:
		return connect.NewError(connect.CodeInternal, err)
	}
}
