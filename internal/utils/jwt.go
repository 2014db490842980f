package utils // package utils provides helper functions for token creation and credential hashing

import (
    "errors"
    "time"

    "github.com/golang-jwt/jwt/v5" // JWT library for creating and parsing signed tokens
)

// AccessToken represents a signed JWT access token along with its expiry.
// The Token field contains the JWT string.  Exp stores the expiration
// timestamp.  Access tokens are sent in the Authorization header when
// calling protected endpoints.
type AccessToken struct {
    Token string    // the serialized JWT string
    Exp   time.Time // the UTC expiration time
}

// Claims are the values carried by an access token.  SessionID points at
// the server-side session so that logout takes effect before exp.
type Claims struct {
    SessionID  string
    AttendeeID string
    Role       string
}

// ErrInvalidToken is returned for tokens that fail parsing, signature or
// expiry checks, or lack the claims we issue.
var ErrInvalidToken = errors.New("invalid token")

// NewAccessToken builds and signs an HS256 JWT bound to a session.  The
// token carries the attendee ID as subject, the role and the session ID
// (sid), and expires together with the session.
func NewAccessToken(secret string, c Claims, exp time.Time) (AccessToken, error) {
    claims := jwt.MapClaims{
        "sub":  c.AttendeeID,
        "sid":  c.SessionID,
        "role": c.Role,
        "exp":  exp.Unix(),
        "iat":  time.Now().UTC().Unix(),
    }
    t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
    signed, err := t.SignedString([]byte(secret))
    if err != nil {
        return AccessToken{}, err
    }
    return AccessToken{Token: signed, Exp: exp}, nil
}

// ParseAccessToken validates the signature and expiry of raw and returns
// its claims.  Only HMAC-signed tokens are accepted.
func ParseAccessToken(secret, raw string) (Claims, error) {
    tok, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
        // Reject any algorithm other than the HMAC family we sign with.
        if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
            return nil, ErrInvalidToken
        }
        return []byte(secret), nil
    })
    if err != nil || !tok.Valid {
        return Claims{}, ErrInvalidToken
    }
    mc, ok := tok.Claims.(jwt.MapClaims)
    if !ok {
        return Claims{}, ErrInvalidToken
    }
    sid, _ := mc["sid"].(string)
    sub, _ := mc["sub"].(string)
    role, _ := mc["role"].(string)
    if sid == "" || sub == "" {
        return Claims{}, ErrInvalidToken
    }
    return Claims{SessionID: sid, AttendeeID: sub, Role: role}, nil
}
