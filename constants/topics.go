package constants

// Kafka topics. Stable names shared with the upload and embedding services.
const (
	TopicParseRequests       = "cv_parsing"
	TopicEmbeddingGeneration = "cv_embedding_generation"
)

// DefaultConsumerGroup is used when KAFKA_GROUP_ID is unset.
const DefaultConsumerGroup = "cv-parser"
