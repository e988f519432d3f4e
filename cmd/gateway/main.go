package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net"
	"strings"
	"time"

	"google.golang.org/grpc"

	pb "obsidian/api/pb"
	"obsidian/api/grpcserver"
	"obsidian/gateway"
	exitwal "obsidian/infra/wal/exit"
	"obsidian/jobs/broadcaster"
)

func main() {
	var (
		entryWALDir  = flag.String("entry-wal-dir", "./wal_entry", "directory for the entry WAL segments")
		exitWALDir   = flag.String("exit-wal-dir", "./wal_exit", "directory for the trade outbox (pebble)")
		snapshotDir  = flag.String("snapshot-dir", "./snapshot", "directory for periodic book snapshots")
		grpcAddr     = flag.String("grpc-addr", ":50051", "gRPC listen address")
		kafkaBrokers  = flag.String("kafka-brokers", "localhost:9092", "comma-separated Kafka broker addresses")
		kafkaTopic    = flag.String("kafka-topic", "obsidian.trades", "Kafka topic trades are published to")
		eventsTopic   = flag.String("events-topic", "", "Kafka topic for best-effort order-acceptance events (kafka-go); empty disables this stream")
		segmentSize   = flag.Int64("entry-wal-segment-bytes", 2*1024*1024, "entry WAL segment rotation size in bytes")
		epochEvery    = flag.Duration("epoch-interval", 2*time.Second, "epoch advance/reclaim interval")
		snapshotEvery = flag.Duration("snapshot-interval", 30*time.Second, "book snapshot interval")
	)
	flag.Parse()

	exitWAL, err := exitwal.Open(*exitWALDir)
	if err != nil {
		log.Fatalf("exit WAL open failed: %v", err)
	}
	defer exitWAL.Close()

	brokers := strings.Split(*kafkaBrokers, ",")
	bc, err := broadcaster.New(exitWAL, brokers, *kafkaTopic)
	if err != nil {
		log.Fatalf("broadcaster init failed: %v", err)
	}
	defer bc.Close()

	gw, err := gateway.New(gateway.Config{
		EntryWALDir:      *entryWALDir,
		EntrySegmentSize: *segmentSize,
		EventsBrokers:    brokers,
		EventsTopic:      *eventsTopic,
	}, bc)
	if err != nil {
		log.Fatalf("gateway init failed: %v", err)
	}
	defer gw.Close()

	if err := gw.Bootstrap(gateway.SnapshotPath(*snapshotDir)); err != nil {
		log.Fatalf("bootstrap failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		ticker := time.NewTicker(*epochEvery)
		defer ticker.Stop()
		for range ticker.C {
			gw.AdvanceEpoch()
		}
	}()

	gw.StartSnapshotJob(*snapshotDir, *snapshotEvery)
	bc.Start(ctx)

	lis, err := net.Listen("tcp", *grpcAddr)
	if err != nil {
		log.Fatalf("listen failed: %v", err)
	}

	grpcSrv := grpc.NewServer(grpc.ForceServerCodec(pb.NewCodec()))
	pb.RegisterOrderServiceServer(grpcSrv, grpcserver.NewServer(gw))

	fmt.Printf("order book gateway listening on %s\n", *grpcAddr)
	if err := grpcSrv.Serve(lis); err != nil {
		log.Fatalf("gRPC server exited: %v", err)
	}
}
