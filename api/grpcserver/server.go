// Package grpcserver adapts gateway.Gateway to the hand-written
// OrderService gRPC contract in api/pb.
package grpcserver

import (
	"context"
	"log"

	pb "obsidian/api/pb"
	"obsidian/domain/orderbook"
	"obsidian/gateway"
)

// Server implements pb.OrderServiceServer.
type Server struct {
	gw *gateway.Gateway
}

func NewServer(gw *gateway.Gateway) *Server {
	return &Server{gw: gw}
}

func (s *Server) PlaceOrder(ctx context.Context, req *pb.PlaceOrderRequest) (*pb.PlaceOrderResponse, error) {
	result, err := s.gw.Submit(gateway.SubmitRequest{
		OrderID: req.OrderId,
		Side:    toSide(req.Side),
		Type:    toType(req.Type),
		TIF:     toTIF(req.Tif),
		Price:   req.Price,
		Qty:     req.Qty,
	})
	if err != nil {
		return nil, err
	}

	log.Printf("[grpc] PlaceOrder id=%d side=%v type=%v tif=%v price=%d qty=%d accepted=%v reason=%s",
		req.OrderId, req.Side, req.Type, req.Tif, req.Price, req.Qty, result.Accepted, result.Reason)

	return &pb.PlaceOrderResponse{
		OrderId:  result.OrderID,
		Accepted: result.Accepted,
		Reason:   string(result.Reason),
	}, nil
}

func (s *Server) CancelOrder(ctx context.Context, req *pb.CancelOrderRequest) (*pb.CancelOrderResponse, error) {
	result, err := s.gw.Cancel(req.OrderId)
	if err != nil {
		return nil, err
	}

	log.Printf("[grpc] CancelOrder id=%d accepted=%v reason=%s", req.OrderId, result.Accepted, result.Reason)

	return &pb.CancelOrderResponse{
		OrderId:  result.OrderID,
		Accepted: result.Accepted,
		Reason:   string(result.Reason),
	}, nil
}

func (s *Server) GetSnapshot(ctx context.Context, req *pb.SnapshotRequest) (*pb.SnapshotResponse, error) {
	orders := s.gw.Snapshot()

	resp := &pb.SnapshotResponse{
		Orders: make([]*pb.OrderEntry, 0, len(orders)),
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, &pb.OrderEntry{
			OrderId:   o.ID,
			Side:      fromSide(o.Side),
			Type:      fromType(o.Type),
			Tif:       fromTIF(o.TIF),
			Price:     o.Price,
			Qty:       o.InitialQty,
			Remaining: o.RemainingQty,
			Status:    uint32(o.Status),
		})
	}
	return resp, nil
}

func toSide(s pb.Side) orderbook.Side {
	if s == pb.Side_SELL {
		return orderbook.Sell
	}
	return orderbook.Buy
}

func fromSide(s orderbook.Side) pb.Side {
	if s == orderbook.Sell {
		return pb.Side_SELL
	}
	return pb.Side_BUY
}

func toType(t pb.OrderType) orderbook.OrderType {
	if t == pb.OrderType_MARKET {
		return orderbook.Market
	}
	return orderbook.Limit
}

func fromType(t orderbook.OrderType) pb.OrderType {
	if t == orderbook.Market {
		return pb.OrderType_MARKET
	}
	return pb.OrderType_LIMIT
}

func toTIF(t pb.TimeInForce) orderbook.TimeInForce {
	switch t {
	case pb.TimeInForce_IOC:
		return orderbook.ImmediateOrCancel
	case pb.TimeInForce_FOK:
		return orderbook.FillOrKill
	default:
		return orderbook.GoodTillCancel
	}
}

func fromTIF(t orderbook.TimeInForce) pb.TimeInForce {
	switch t {
	case orderbook.ImmediateOrCancel:
		return pb.TimeInForce_IOC
	case orderbook.FillOrKill:
		return pb.TimeInForce_FOK
	default:
		return pb.TimeInForce_GTC
	}
}
