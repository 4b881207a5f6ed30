package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"time"

	"cloud.google.com/go/pubsub"
	"github.com/airbusgeo/geocube-insar/common"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

var eventsTopic = "insar-events"
var processorTopic = "insar-processor"

func main() {
	ctx := context.Background()

	if os.Getenv("PUBSUB_EMULATOR_HOST") == "" {
		os.Setenv("PUBSUB_EMULATOR_HOST", "localhost:8085")
	}

	projectID := flag.String("project", "geocube-emulator", "emulator project")
	jobFile := flag.String("job", "", "json file of a merge job to publish on "+processorTopic)
	flag.Parse()

	log.Print("New client for project " + *projectID)
	client, err := pubsub.NewClient(ctx, *projectID)
	if err != nil {
		log.Fatalf("pubsub.NewClient: %v", err)
	}
	defer client.Close()

	// The subscriptions have the name of their topic
	for _, topic := range []string{eventsTopic, processorTopic} {
		log.Print("Create Topic : " + topic)
		if _, err = client.CreateTopic(ctx, topic); err != nil && status.Code(err) != codes.AlreadyExists {
			log.Fatalf("pubsub.CreateTopic: %v", err)
		}

		log.Print("Create Subscription : " + topic)
		if _, err = client.CreateSubscription(ctx, topic, pubsub.SubscriptionConfig{
			Topic:       client.Topic(topic),
			AckDeadline: 10 * time.Second,
		}); err != nil && status.Code(err) != codes.AlreadyExists {
			log.Fatalf("CreateSubscription: %v", err)
		}
	}

	if *jobFile != "" {
		b, err := os.ReadFile(*jobFile)
		if err != nil {
			log.Fatalf("ReadFile: %v", err)
		}
		job := common.MergeJob{}
		if err := json.Unmarshal(b, &job); err != nil {
			log.Fatalf("invalid job: %v", err)
		}
		if err := job.WithDefaults().Validate(); err != nil {
			log.Fatalf("invalid job: %v", err)
		}
		topic := client.Topic(processorTopic)
		defer topic.Stop()
		id, err := topic.Publish(ctx, &pubsub.Message{Data: b}).Get(ctx)
		if err != nil {
			log.Fatalf("Publish: %v", err)
		}
		log.Printf("Job %d published (%s)", job.ID, id)
	}

	log.Print("Done!")
}
