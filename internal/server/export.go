package server

import (
	"context"
	"log/slog"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"github.com/joseph-ayodele/cv-parser/internal/common"
)

const (
	ExportServiceName   = "cvparser.v1.Export"
	ExportCatalogMethod = "/" + ExportServiceName + "/ExportCatalog"
)

type CatalogExporter interface {
	ExportCatalogXLSX(ctx context.Context) ([]byte, error)
}

type ExportService interface {
	ExportCatalog(ctx context.Context, req *emptypb.Empty) (*wrapperspb.BytesValue, error)
}

type ExportServer struct {
	svc    CatalogExporter
	logger *slog.Logger
}

func NewExportServer(svc CatalogExporter, logger *slog.Logger) *ExportServer {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportServer{svc: svc, logger: logger}
}

// ExportCatalog returns the skill catalog workbook as XLSX bytes.
func (s *ExportServer) ExportCatalog(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	xlsx, err := s.svc.ExportCatalogXLSX(ctx)
	if err != nil {
		s.logger.Error("export.xlsx.failed", "err", err)
		return nil, common.InternalError(err.Error())
	}
	return wrapperspb.Bytes(xlsx), nil
}

func RegisterExportServer(s grpc.ServiceRegistrar, srv ExportService) {
	s.RegisterService(&exportServiceDesc, srv)
}

var exportServiceDesc = grpc.ServiceDesc{
	ServiceName: ExportServiceName,
	HandlerType: (*ExportService)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "ExportCatalog", Handler: exportCatalogHandler},
	},
	Streams: []grpc.StreamDesc{},
}

func exportCatalogHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ExportService).ExportCatalog(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: ExportCatalogMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ExportService).ExportCatalog(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}
