package protocol

import (
	"bufio"
	"encoding/json"
	"fmt"
	"net"
)

type Client struct {
	conn    net.Conn
	scanner *bufio.Scanner
}

func NewClient(addr string) (*Client, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	scanner := bufio.NewScanner(conn)
	scanner.Buffer(make([]byte, 0, 4096), maxResponseSize)

	return &Client{
		conn:    conn,
		scanner: scanner,
	}, nil
}

// a full table scan of maximum length rows
const maxResponseSize = 4 * 1024 * 1024

func (c *Client) Close() error {
	return c.conn.Close()
}

func (c *Client) Ping() (Response, error) {
	return c.SendRequest(Request{Type: RequestPing})
}

func (c *Client) Stats() (Response, error) {
	return c.SendRequest(Request{Type: RequestStats})
}

func (c *Client) SendQuery(sql string) (Response, error) {
	return c.SendRequest(Request{Type: RequestSQL, SQL: sql})
}

func (c *Client) SendRequest(req Request) (Response, error) {
	data, err := json.Marshal(req)
	if err != nil {
		return Response{}, err
	}

	_, err = c.conn.Write(append(data, '\n'))
	if err != nil {
		return Response{}, fmt.Errorf("failed to send request: %w", err)
	}

	if !c.scanner.Scan() {
		if err := c.scanner.Err(); err != nil {
			return Response{}, fmt.Errorf("failed to read response: %w", err)
		}
		return Response{}, fmt.Errorf("failed to read response: connection closed")
	}

	var resp Response
	if err := json.Unmarshal(c.scanner.Bytes(), &resp); err != nil {
		return Response{}, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return resp, nil
}
