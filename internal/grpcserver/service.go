package grpcserver

import (
	"context"

	"google.golang.org/grpc"

	"topmovies/pkg/models"
)

const serviceName = "topmovies.MovieService"

type ListRankedRequest struct{}

type ListRankedResponse struct {
	Total int                  `json:"total"`
	Items []models.RankedMovie `json:"items"`
}

type GetMovieRequest struct {
	ID int64 `json:"id"`
}

type GetMovieResponse struct {
	Movie models.Movie `json:"movie"`
}

type RateMovieRequest struct {
	ID     int64  `json:"id"`
	Rating string `json:"rating"`
	Review string `json:"review"`
}

type RateMovieResponse struct {
	Movie models.Movie `json:"movie"`
}

type DeleteMovieRequest struct {
	ID int64 `json:"id"`
}

type DeleteMovieResponse struct {
	Deleted bool `json:"deleted"`
}

// MovieServiceServer is the server side of topmovies.MovieService.
type MovieServiceServer interface {
	ListRanked(context.Context, *ListRankedRequest) (*ListRankedResponse, error)
	GetMovie(context.Context, *GetMovieRequest) (*GetMovieResponse, error)
	RateMovie(context.Context, *RateMovieRequest) (*RateMovieResponse, error)
	DeleteMovie(context.Context, *DeleteMovieRequest) (*DeleteMovieResponse, error)
}

func RegisterMovieServiceServer(s grpc.ServiceRegistrar, srv MovieServiceServer) {
	s.RegisterService(&movieServiceDesc, srv)
}

func unaryHandler[Req any, Resp any](method string, call func(MovieServiceServer, context.Context, *Req) (*Resp, error)) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: method,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(Req)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(MovieServiceServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/" + method}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(MovieServiceServer), ctx, req.(*Req))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

var movieServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*MovieServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		unaryHandler("ListRanked", MovieServiceServer.ListRanked),
		unaryHandler("GetMovie", MovieServiceServer.GetMovie),
		unaryHandler("RateMovie", MovieServiceServer.RateMovie),
		unaryHandler("DeleteMovie", MovieServiceServer.DeleteMovie),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "topmovies/movie_service",
}

// Client calls topmovies.MovieService over an existing connection.
type Client struct {
	cc grpc.ClientConnInterface
}

func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, "/"+serviceName+"/"+method, in, out, grpc.CallContentSubtype(CodecName)); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) ListRanked(ctx context.Context) (*ListRankedResponse, error) {
	return invoke[ListRankedResponse](ctx, c.cc, "ListRanked", &ListRankedRequest{})
}

func (c *Client) GetMovie(ctx context.Context, id int64) (*GetMovieResponse, error) {
	return invoke[GetMovieResponse](ctx, c.cc, "GetMovie", &GetMovieRequest{ID: id})
}

func (c *Client) RateMovie(ctx context.Context, id int64, rating, review string) (*RateMovieResponse, error) {
	return invoke[RateMovieResponse](ctx, c.cc, "RateMovie", &RateMovieRequest{ID: id, Rating: rating, Review: review})
}

func (c *Client) DeleteMovie(ctx context.Context, id int64) (*DeleteMovieResponse, error) {
	return invoke[DeleteMovieResponse](ctx, c.cc, "DeleteMovie", &DeleteMovieRequest{ID: id})
}
