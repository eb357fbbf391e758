package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/IBM/sarama"
	"github.com/zeebo/xxh3"

	"github.com/tednaleid/streamcount/distinct"
)

// keyCounter serializes access to one estimator instance; partition
// consumers feed it from multiple goroutines and a single estimator is not
// safe for concurrent ingestion.
type keyCounter struct {
	mutex     sync.Mutex
	estimator *distinct.Estimator[uint64]
}

func (k *keyCounter) observe(key []byte) error {
	k.mutex.Lock()
	defer k.mutex.Unlock()
	return k.estimator.Ingest(xxh3.Hash(key))
}

func (k *keyCounter) snapshot() (estimate float64, processed uint64, retention float64) {
	k.mutex.Lock()
	defer k.mutex.Unlock()
	return k.estimator.Estimate(), k.estimator.ElementsProcessed(), k.estimator.RetentionProbability()
}

type keyDistinctMonitor struct {
	client   sarama.Client
	consumer sarama.Consumer
	topic    string
	counter  *keyCounter
}

func main() {
	broker, topic, capacity := parseFlags()

	estimator, err := distinct.New[uint64](capacity)
	if err != nil {
		log.Fatalf("Error creating estimator: %v", err)
	}

	monitor, err := newKeyDistinctMonitor(broker, topic, &keyCounter{estimator: estimator})
	if err != nil {
		log.Fatalf("Error creating Kafka monitor: %v", err)
	}
	defer monitor.close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	partitions, err := monitor.consumer.Partitions(topic)
	if err != nil {
		log.Fatalf("Error listing partitions: %v", err)
	}
	fmt.Fprintf(os.Stderr, "broker: %s topic: %s, partitions: %d, capacity: %d\n", broker, topic, len(partitions), capacity)

	for _, partition := range partitions {
		go monitor.consumePartition(ctx, partition)
	}
	go monitor.displayStats(ctx)

	waitForInterrupt(cancel)
	fmt.Println("\nShutting down...")
}

func parseFlags() (string, string, int) {
	broker := flag.String("b", "", "Kafka broker address (host:port)")
	topic := flag.String("t", "", "Kafka topic")
	capacity := flag.Int("s", 100_000, "Sample buffer capacity")
	flag.Parse()

	if *broker == "" || *topic == "" {
		flag.Usage()
		os.Exit(1)
	}

	return *broker, *topic, *capacity
}

func newKeyDistinctMonitor(broker, topic string, counter *keyCounter) (*keyDistinctMonitor, error) {
	config := sarama.NewConfig()
	config.Version = sarama.V3_0_0_0

	client, err := sarama.NewClient([]string{broker}, config)
	if err != nil {
		return nil, fmt.Errorf("error creating client: %v", err)
	}

	consumer, err := sarama.NewConsumerFromClient(client)
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("error creating consumer: %v", err)
	}

	return &keyDistinctMonitor{
		client:   client,
		consumer: consumer,
		topic:    topic,
		counter:  counter,
	}, nil
}

func (m *keyDistinctMonitor) close() {
	m.consumer.Close()
	m.client.Close()
}

func (m *keyDistinctMonitor) consumePartition(ctx context.Context, partition int32) {
	partitionConsumer, err := m.consumer.ConsumePartition(m.topic, partition, sarama.OffsetOldest)
	if err != nil {
		log.Fatalf("Error creating partition consumer: %v", err)
	}
	defer partitionConsumer.Close()

	for {
		select {
		case msg := <-partitionConsumer.Messages():
			if err := m.counter.observe(msg.Key); err != nil {
				log.Fatalf("Estimator exhausted, rerun with a larger -s: %v", err)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (m *keyDistinctMonitor) displayStats(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			estimate, processed, retention := m.counter.snapshot()
			fmt.Printf("\rTopic: %s, Messages: %d, Estimated distinct keys: %.0f, Retention: %g",
				m.topic, processed, estimate, retention)
		case <-ctx.Done():
			return
		}
	}
}

func waitForInterrupt(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt)
	<-sigChan
	cancel()
}
