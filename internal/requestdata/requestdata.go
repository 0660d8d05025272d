package requestdata

import (
  "context"

  "github.com/google/uuid"
)

var requestDataKey = struct{}{}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
  return context.WithValue(ctx, requestDataKey, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
  val := ctx.Value(requestDataKey)
  if rd, ok := val.(*RequestData); ok {
    return rd
  }
  return nil
}

// RequestData carries the caller identity for a request. Authenticated
// requests set UserID from the bearer token; guest requests carry only the
// session id header.
type RequestData struct {
  TokenString string
  UserID      uuid.UUID
  SessionID   string
}

// Owner reports the cart owner for the request: the user id when
// authenticated, otherwise the guest session id.
func (rd *RequestData) Owner() (*uuid.UUID, *string) {
  if rd == nil {
    return nil, nil
  }
  if rd.UserID != uuid.Nil {
    id := rd.UserID
    return &id, nil
  }
  if rd.SessionID != "" {
    sid := rd.SessionID
    return nil, &sid
  }
  return nil, nil
}
