package server

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/cv-parser/internal/common"
)

const (
	ParserServiceName = "cvparser.v1.Parser"
	ParseMethod       = "/" + ParserServiceName + "/Parse"

	// DocumentIDHeader carries the document id of a Parse call.
	DocumentIDHeader = "document-id"
)

// Runner is the pipeline entry point.
type Runner interface {
	Parse(ctx context.Context, id int64, data []byte) (string, error)
}

// ParserService takes PDF bytes and answers with the structured record as JSON.
type ParserService interface {
	Parse(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.StringValue, error)
}

type ParserServer struct {
	runner Runner
	logger *slog.Logger
}

func NewParserServer(runner Runner, logger *slog.Logger) *ParserServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParserServer{runner: runner, logger: logger}
}

func (s *ParserServer) Parse(ctx context.Context, req *wrapperspb.BytesValue) (*wrapperspb.StringValue, error) {
	id, err := documentID(ctx)
	if err != nil {
		return nil, err
	}
	if len(req.GetValue()) == 0 {
		return nil, common.InvalidArgumentError("document bytes are required")
	}

	start := time.Now()
	out, err := s.runner.Parse(ctx, id, req.GetValue())
	if err != nil {
		s.logger.Error("parser.parse.failed", "document_id", id, "error", err,
			"elapsed_ms", time.Since(start).Milliseconds())
		return nil, common.ToStatus(err)
	}
	s.logger.Info("parser.parse.ok", "document_id", id, "bytes", len(req.GetValue()),
		"elapsed_ms", time.Since(start).Milliseconds())
	return wrapperspb.String(out), nil
}

func documentID(ctx context.Context) (int64, error) {
	md, _ := metadata.FromIncomingContext(ctx)
	vals := md.Get(DocumentIDHeader)
	if len(vals) == 0 || strings.TrimSpace(vals[0]) == "" {
		return 0, common.InvalidArgumentErrorf("%s metadata is required", DocumentIDHeader)
	}
	id, err := strconv.ParseInt(strings.TrimSpace(vals[0]), 10, 64)
	if err != nil || id <= 0 {
		return 0, common.InvalidArgumentErrorf("%s must be a positive integer", DocumentIDHeader)
	}
	return id, nil
}

func RegisterParserServer(s grpc.ServiceRegistrar, srv ParserService) {
	s.RegisterService(&parserServiceDesc, srv)
}

var parserServiceDesc = grpc.ServiceDesc{
	ServiceName: ParserServiceName,
	HandlerType: (*ParserService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Parse", Handler: parseHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func parseHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ParserService).Parse(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ParseMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ParserService).Parse(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}
