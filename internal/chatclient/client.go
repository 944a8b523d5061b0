package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shoplane/storefront-chat/internal/widget"
)

// Client speaks the storefront chat service's wire contract and implements
// widget.ConversationAPI. Timeouts come from the caller's context; the
// embedded http.Client carries only a safety-net ceiling.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func New(baseURL, token string) *Client {
	if baseURL == "" {
		baseURL = "http://localhost:8080"
	}
	return &Client{
		BaseURL: baseURL,
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type findOrCreateReq struct {
	ProductID uint64 `json:"productId"`
	Subject   string `json:"subject"`
}

type conversationPayload struct {
	ConversationID  string `json:"conversation_id"`
	SellerID        uint64 `json:"seller_id"`
	ProductID       uint64 `json:"product_id"`
	Subject         string `json:"subject"`
	SellerName      string `json:"seller_name"`
	SellerAvatarURL string `json:"seller_avatar_url"`
}

type findOrCreateResp struct {
	Success      bool                 `json:"success"`
	Conversation *conversationPayload `json:"conversation"`
	Error        string               `json:"error,omitempty"`
}

type listMessagesResp struct {
	Success  bool             `json:"success"`
	Messages []widget.Message `json:"messages"`
	Error    string           `json:"error,omitempty"`
}

type appendMessageReq struct {
	MessageText string `json:"messageText"`
	MessageType string `json:"messageType"`
}

type appendMessageResp struct {
	Success bool            `json:"success"`
	Message *widget.Message `json:"message"`
	Error   string          `json:"error,omitempty"`
}

func (c *Client) FindOrCreateConversation(ctx context.Context, productID uint64, subject string) (widget.ConversationInfo, error) {
	var decoded findOrCreateResp
	err := c.do(ctx, http.MethodPost, "/chat/conversations",
		findOrCreateReq{ProductID: productID, Subject: subject}, &decoded)
	if err != nil {
		return widget.ConversationInfo{}, err
	}
	if !decoded.Success || decoded.Conversation == nil {
		return widget.ConversationInfo{}, respError("find-or-create", decoded.Error)
	}
	conv := decoded.Conversation
	return widget.ConversationInfo{
		ConversationID:  conv.ConversationID,
		SellerID:        conv.SellerID,
		ProductID:       conv.ProductID,
		Subject:         conv.Subject,
		SellerName:      conv.SellerName,
		SellerAvatarURL: conv.SellerAvatarURL,
	}, nil
}

func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]widget.Message, error) {
	var decoded listMessagesResp
	path := fmt.Sprintf("/chat/conversations/%s/messages", conversationID)
	if err := c.do(ctx, http.MethodGet, path, nil, &decoded); err != nil {
		return nil, err
	}
	if !decoded.Success {
		return nil, respError("list messages", decoded.Error)
	}
	return decoded.Messages, nil
}

func (c *Client) AppendMessage(ctx context.Context, conversationID, text, messageType string) (widget.Message, error) {
	var decoded appendMessageResp
	path := fmt.Sprintf("/chat/conversations/%s/messages", conversationID)
	err := c.do(ctx, http.MethodPost, path,
		appendMessageReq{MessageText: text, MessageType: messageType}, &decoded)
	if err != nil {
		return widget.Message{}, err
	}
	if !decoded.Success || decoded.Message == nil {
		return widget.Message{}, respError("append message", decoded.Error)
	}
	return *decoded.Message, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if c.HTTP == nil {
		return errors.New("chatclient: http client is nil")
	}

	var reader *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	url := strings.TrimRight(c.BaseURL, "/") + path
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// the failure envelope still carries a usable error message
		var failure struct {
			Error string `json:"error"`
		}
		if json.NewDecoder(resp.Body).Decode(&failure) == nil && failure.Error != "" {
			return fmt.Errorf("chatclient: %s (status %d)", failure.Error, resp.StatusCode)
		}
		return fmt.Errorf("chatclient: status %d", resp.StatusCode)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

func respError(op, msg string) error {
	if msg == "" {
		msg = "empty response"
	}
	return fmt.Errorf("chatclient: %s: %s", op, msg)
}
