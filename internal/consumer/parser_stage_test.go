package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/DIP-Sharing-Board/discord-bot/internal/domain"
)

// MockMessageParser is a mock implementation of MessageParser
type MockMessageParser struct {
	mock.Mock
}

func (m *MockMessageParser) Parse(body []byte) (*domain.ChatMessage, error) {
	args := m.Called(body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ChatMessage), args.Error(1)
}

func TestParserStage_Start_Success(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	log := zap.NewNop()

	parserStage := NewParserStage(mockConsumer, mockParser, log)

	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/test-queue")
	mockConsumer.On("DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput")).
		Return(&sqs.DeleteMessageOutput{}, nil).Maybe()

	message := types.Message{
		MessageId:     aws.String("msg-1"),
		Body:          aws.String(`{"message_id": "1", "channel_id": "100"}`),
		ReceiptHandle: aws.String("receipt-1"),
	}

	chatMsg := &domain.ChatMessage{
		MessageID: "1",
		ChannelID: "100",
		Text:      "https://www.camphub.in.th/camp/",
	}

	mockParser.On("Parse", []byte(`{"message_id": "1", "channel_id": "100"}`)).Return(chatMsg, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)

	go parserStage.Start(ctx, in, out)

	// Send message
	in <- message
	close(in)

	// Receive envelope
	envelope := <-out

	assert.NotNil(t, envelope)
	assert.Equal(t, "1", envelope.Message.MessageID)
	assert.Equal(t, "https://www.camphub.in.th/camp/", envelope.Message.Text)

	mockParser.AssertExpectations(t)
}

func TestParserStage_Start_MalformedMessage(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	log := zap.NewNop()

	parserStage := NewParserStage(mockConsumer, mockParser, log)

	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/test-queue")
	mockConsumer.On("DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput")).
		Return(&sqs.DeleteMessageOutput{}, nil)

	message := types.Message{
		MessageId:     aws.String("msg-1"),
		Body:          aws.String(`{invalid json}`),
		ReceiptHandle: aws.String("receipt-1"),
	}

	parseErr := errors.New("invalid JSON format")
	mockParser.On("Parse", []byte(`{invalid json}`)).Return(nil, parseErr)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)

	go parserStage.Start(ctx, in, out)

	// Send malformed message
	in <- message

	// Wait for processing before closing input
	time.Sleep(20 * time.Millisecond)
	close(in)

	// Wait for output channel to close (which happens when input closes)
	timeout := time.After(100 * time.Millisecond)
	envelopeReceived := false

	for {
		select {
		case envelope, ok := <-out:
			if !ok {
				// Channel closed, exit loop
				goto done
			}
			if envelope != nil {
				envelopeReceived = true
				t.Fatalf("Expected no envelope for malformed message, but got: %v", envelope)
			}
		case <-timeout:
			goto done
		}
	}

done:
	assert.False(t, envelopeReceived, "Should not receive any envelope for malformed message")
	mockParser.AssertExpectations(t)
	mockConsumer.AssertCalled(t, "DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput"))
}

func TestParserStage_Start_DeleteMessageFailure(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	log := zap.NewNop()

	parserStage := NewParserStage(mockConsumer, mockParser, log)

	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/test-queue")

	deleteErr := errors.New("failed to delete message from SQS")
	mockConsumer.On("DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput")).
		Return(nil, deleteErr)

	message := types.Message{
		MessageId:     aws.String("msg-1"),
		Body:          aws.String(`{invalid}`),
		ReceiptHandle: aws.String("receipt-1"),
	}

	parseErr := errors.New("invalid JSON")
	mockParser.On("Parse", []byte(`{invalid}`)).Return(nil, parseErr)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)

	go parserStage.Start(ctx, in, out)

	// Send message
	in <- message

	// Wait for processing before closing input
	time.Sleep(20 * time.Millisecond)
	close(in)

	// Wait for output channel to close (which happens when input closes)
	timeout := time.After(100 * time.Millisecond)
	envelopeReceived := false

	for {
		select {
		case envelope, ok := <-out:
			if !ok {
				// Channel closed, exit loop
				goto done
			}
			if envelope != nil {
				envelopeReceived = true
				t.Fatalf("Expected no envelope, but got: %v", envelope)
			}
		case <-timeout:
			goto done
		}
	}

done:
	assert.False(t, envelopeReceived, "Should not receive any envelope for malformed message")
	mockParser.AssertExpectations(t)
	mockConsumer.AssertCalled(t, "DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput"))
}

func TestParserStage_Start_ContextCancellation(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	log := zap.NewNop()

	parserStage := NewParserStage(mockConsumer, mockParser, log)

	ctx, cancel := context.WithCancel(context.Background())

	in := make(chan types.Message)
	out := make(chan *Envelope, 1)

	// Cancel immediately
	cancel()

	parserStage.Start(ctx, in, out)

	// Output channel should be closed
	_, ok := <-out
	assert.False(t, ok, "Output channel should be closed after context cancellation")
}

func TestParserStage_Start_InputChannelClosed(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	log := zap.NewNop()

	parserStage := NewParserStage(mockConsumer, mockParser, log)

	ctx := context.Background()

	in := make(chan types.Message)
	out := make(chan *Envelope, 1)

	// Close input channel immediately
	close(in)

	parserStage.Start(ctx, in, out)

	// Output channel should be closed
	_, ok := <-out
	assert.False(t, ok, "Output channel should be closed when input channel is closed")
}

func TestParserStage_Start_MultipleMessages(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)
	log := zap.NewNop()

	parserStage := NewParserStage(mockConsumer, mockParser, log)

	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/test-queue")
	mockConsumer.On("DeleteMessage", mock.Anything, mock.AnythingOfType("*sqs.DeleteMessageInput")).
		Return(&sqs.DeleteMessageOutput{}, nil).Maybe()

	messages := []types.Message{
		{
			MessageId:     aws.String("msg-1"),
			Body:          aws.String(`{"message_id": "1", "channel_id": "100"}`),
			ReceiptHandle: aws.String("receipt-1"),
		},
		{
			MessageId:     aws.String("msg-2"),
			Body:          aws.String(`{invalid}`),
			ReceiptHandle: aws.String("receipt-2"),
		},
		{
			MessageId:     aws.String("msg-3"),
			Body:          aws.String(`{"message_id": "3", "channel_id": "300"}`),
			ReceiptHandle: aws.String("receipt-3"),
		},
	}

	msg1 := &domain.ChatMessage{MessageID: "1", ChannelID: "100"}
	msg3 := &domain.ChatMessage{MessageID: "3", ChannelID: "300"}

	mockParser.On("Parse", []byte(`{"message_id": "1", "channel_id": "100"}`)).Return(msg1, nil)
	mockParser.On("Parse", []byte(`{invalid}`)).Return(nil, errors.New("parse error"))
	mockParser.On("Parse", []byte(`{"message_id": "3", "channel_id": "300"}`)).Return(msg3, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := make(chan types.Message, 3)
	out := make(chan *Envelope, 3)

	go parserStage.Start(ctx, in, out)

	// Send messages
	for _, msg := range messages {
		in <- msg
	}
	close(in)

	// Collect envelopes
	var envelopes []*Envelope
	timeout := time.After(100 * time.Millisecond)
	done := false

	for !done {
		select {
		case envelope, ok := <-out:
			if !ok {
				done = true
				break
			}
			envelopes = append(envelopes, envelope)
		case <-timeout:
			done = true
		}
	}

	// Should receive 2 valid envelopes (msg-1 and msg-3), msg-2 should be deleted
	assert.Len(t, envelopes, 2)
	assert.Equal(t, "1", envelopes[0].Message.MessageID)
	assert.Equal(t, "3", envelopes[1].Message.MessageID)

	mockParser.AssertExpectations(t)
	mockConsumer.AssertNumberOfCalls(t, "DeleteMessage", 1) // Only for malformed message
}

func TestParserStage_Start_FillsMessageIDFromQueue(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)

	parserStage := NewParserStage(mockConsumer, mockParser, zap.NewNop())

	body := `{"channel_id": "100", "text": "https://example.com/a"}`
	mockParser.On("Parse", []byte(body)).Return(&domain.ChatMessage{ChannelID: "100", Text: "https://example.com/a"}, nil)

	in := make(chan types.Message, 1)
	out := make(chan *Envelope, 1)

	in <- types.Message{
		MessageId:     aws.String("sqs-42"),
		Body:          aws.String(body),
		ReceiptHandle: aws.String("receipt-42"),
	}
	close(in)

	parserStage.Start(context.Background(), in, out)

	envelope := <-out
	assert.Equal(t, "sqs-42", envelope.Message.MessageID)
}

func TestParserStage_Envelope_AckDeletesNackKeeps(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)

	parserStage := NewParserStage(mockConsumer, mockParser, zap.NewNop())

	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/test-queue")
	mockConsumer.On("DeleteMessage", mock.Anything, mock.MatchedBy(func(input *sqs.DeleteMessageInput) bool {
		return aws.ToString(input.ReceiptHandle) == "receipt-7"
	})).Return(&sqs.DeleteMessageOutput{}, nil).Once()

	body := `{"channel_id": "100", "text": "https://example.com/a"}`
	mockParser.On("Parse", []byte(body)).Return(&domain.ChatMessage{MessageID: "7", ChannelID: "100"}, nil)

	envelope := parserStage.parseMessage(context.Background(), types.Message{
		MessageId:     aws.String("msg-7"),
		Body:          aws.String(body),
		ReceiptHandle: aws.String("receipt-7"),
	})

	assert.NoError(t, envelope.Nack(context.Background()))
	mockConsumer.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)

	assert.NoError(t, envelope.Ack(context.Background()))
	mockConsumer.AssertExpectations(t)
}

func channelMessage(id, body, channel string) types.Message {
	msg := types.Message{
		MessageId:     aws.String(id),
		Body:          aws.String(body),
		ReceiptHandle: aws.String("receipt-" + id),
	}
	if channel != "" {
		msg.MessageAttributes = map[string]types.MessageAttributeValue{
			"ChannelID": {DataType: aws.String("String"), StringValue: aws.String(channel)},
		}
	}
	return msg
}

func TestParserStage_ParseMessage_ChannelFromAttribute(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)

	parserStage := NewParserStage(mockConsumer, mockParser, zap.NewNop())

	body := `{"text": "https://example.com/a"}`
	mockParser.On("Parse", []byte(body)).Return(&domain.ChatMessage{Text: "https://example.com/a"}, nil)

	envelope := parserStage.parseMessage(context.Background(), channelMessage("msg-1", body, " 100 "))

	if assert.NotNil(t, envelope) {
		assert.Equal(t, "100", envelope.Message.ChannelID)
	}
	mockConsumer.AssertNotCalled(t, "DeleteMessage", mock.Anything, mock.Anything)
}

func TestParserStage_ParseMessage_BodyChannelWins(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)

	parserStage := NewParserStage(mockConsumer, mockParser, zap.NewNop())

	body := `{"channel_id": "100", "text": "https://example.com/a"}`
	mockParser.On("Parse", []byte(body)).Return(&domain.ChatMessage{ChannelID: "100"}, nil)

	envelope := parserStage.parseMessage(context.Background(), channelMessage("msg-1", body, "200"))

	if assert.NotNil(t, envelope) {
		assert.Equal(t, "100", envelope.Message.ChannelID)
	}
}

func TestParserStage_ParseMessage_DropsMessageWithoutChannel(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)

	parserStage := NewParserStage(mockConsumer, mockParser, zap.NewNop())

	mockConsumer.On("QueueURL").Return("https://sqs.eu-central-1.amazonaws.com/123/test-queue")
	mockConsumer.On("DeleteMessage", mock.Anything, mock.MatchedBy(func(input *sqs.DeleteMessageInput) bool {
		return aws.ToString(input.ReceiptHandle) == "receipt-msg-9"
	})).Return(&sqs.DeleteMessageOutput{}, nil).Once()

	body := `{"text": "https://example.com/a"}`
	mockParser.On("Parse", []byte(body)).Return(&domain.ChatMessage{Text: "https://example.com/a"}, nil)

	envelope := parserStage.parseMessage(context.Background(), channelMessage("msg-9", body, ""))

	assert.Nil(t, envelope)
	mockConsumer.AssertExpectations(t)
}

func TestParserStage_ParseMessage_ReceiveCount(t *testing.T) {
	mockConsumer := new(MockQueueConsumer)
	mockParser := new(MockMessageParser)

	parserStage := NewParserStage(mockConsumer, mockParser, zap.NewNop())

	body := `{"channel_id": "100"}`
	mockParser.On("Parse", []byte(body)).Return(&domain.ChatMessage{ChannelID: "100"}, nil)

	first := channelMessage("msg-1", body, "100")
	envelope := parserStage.parseMessage(context.Background(), first)
	assert.Equal(t, 0, envelope.ReceiveCount)
	assert.False(t, envelope.Redelivered())

	again := channelMessage("msg-1", body, "100")
	again.Attributes = map[string]string{
		string(types.MessageSystemAttributeNameApproximateReceiveCount): "3",
	}
	envelope = parserStage.parseMessage(context.Background(), again)
	assert.Equal(t, 3, envelope.ReceiveCount)
	assert.True(t, envelope.Redelivered())
}
