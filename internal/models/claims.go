package models

// SessionClaims is the non-secret projection of a Profile embedded in access tokens.
// It has no field that could hold credential material.
type SessionClaims struct {
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar *string `json:"avatar"`
	Banner *string `json:"banner"`
	Bio    *string `json:"bio"`
}

// ClaimsFor projects p into session claims.
func ClaimsFor(p *Profile) SessionClaims {
	return SessionClaims{
		Name:   p.Name,
		Email:  p.Email,
		Avatar: p.Avatar,
		Banner: p.Banner,
		Bio:    p.Bio,
	}
}
