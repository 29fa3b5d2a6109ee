package state

import (
	"time"
)

// newLocalEnv creates a new LocalEnv instance with default values
func newLocalEnv() *LocalEnv {
	return &LocalEnv{
		start: time.Now(),
		Jobs:  1,
		DefaultCover: []byte(`<svg viewBox="0 0 200 240" xmlns="http://www.w3.org/2000/svg">
  <path d="M100 10
           L180 40
           V110
           C180 165 145 205 100 230
           C55 205 20 165 20 110
           V40 Z"
        fill="#1f3b73" stroke="#0d1f40" stroke-width="4"/>
  <path d="M100 30
           L162 53
           V110
           C162 153 136 186 100 207
           C64 186 38 153 38 110
           V53 Z"
        fill="none" stroke="#ffffff" stroke-width="2"/>
  <path d="M68 118 L92 142 L136 92"
        fill="none" stroke="#ffffff" stroke-width="12" stroke-linecap="round" stroke-linejoin="round"/>
</svg>`),
	}
}
