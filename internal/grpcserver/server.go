package grpcserver

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"topmovies/internal/movies"
	synchub "topmovies/internal/sync"
)

type Server struct {
	Repo   *movies.Repo
	Events synchub.Publisher
}

var _ MovieServiceServer = (*Server)(nil)

// NewServer builds the service. events may be nil.
func NewServer(repo *movies.Repo, events synchub.Publisher) *Server {
	return &Server{Repo: repo, Events: events}
}

func (s *Server) ListRanked(ctx context.Context, req *ListRankedRequest) (*ListRankedResponse, error) {
	ranked, err := s.Repo.ListRanked(ctx)
	if err != nil {
		return nil, toStatus(err, "list failed")
	}
	return &ListRankedResponse{Total: len(ranked), Items: movies.ByRank(ranked)}, nil
}

func (s *Server) GetMovie(ctx context.Context, req *GetMovieRequest) (*GetMovieResponse, error) {
	if req == nil || req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	m, err := s.Repo.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err, "get failed")
	}
	return &GetMovieResponse{Movie: *m}, nil
}

func (s *Server) RateMovie(ctx context.Context, req *RateMovieRequest) (*RateMovieResponse, error) {
	if req == nil || req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if err := s.Repo.UpdateRating(ctx, req.ID, req.Rating, req.Review); err != nil {
		return nil, toStatus(err, "rate failed")
	}

	saved, err := s.Repo.Get(ctx, req.ID)
	if err != nil {
		return nil, toStatus(err, "fetch failed")
	}
	if s.Events != nil {
		s.Events.Publish(synchub.MovieEvent{Type: synchub.EventMovieRated, MovieID: saved.ID, Title: saved.Title, Rating: saved.Rating})
	}
	return &RateMovieResponse{Movie: *saved}, nil
}

func (s *Server) DeleteMovie(ctx context.Context, req *DeleteMovieRequest) (*DeleteMovieResponse, error) {
	if req == nil || req.ID <= 0 {
		return nil, status.Error(codes.InvalidArgument, "id required")
	}
	if err := s.Repo.Delete(ctx, req.ID); err != nil {
		return nil, toStatus(err, "delete failed")
	}
	if s.Events != nil {
		s.Events.Publish(synchub.MovieEvent{Type: synchub.EventMovieDeleted, MovieID: req.ID})
	}
	return &DeleteMovieResponse{Deleted: true}, nil
}

func toStatus(err error, internalMsg string) error {
	switch {
	case errors.Is(err, movies.ErrNotFound):
		return status.Error(codes.NotFound, "not found")
	case errors.Is(err, movies.ErrDuplicateTitle):
		return status.Error(codes.AlreadyExists, err.Error())
	case errors.Is(err, movies.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	default:
		slog.Error("grpc request failed", "error", err)
		return status.Error(codes.Internal, internalMsg)
	}
}
