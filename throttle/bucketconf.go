package throttle

import "time"

type BucketConf struct {
	Burst     int           `json:"burst"`     // maximum number of tokens in the bucket
	Increment int           `json:"increment"` // how many tokens to add each period
	Period    time.Duration `json:"-"`         // how often to add Increment

	PeriodSeconds int `json:"period_seconds"` // config form of Period
}

// Normalize derives Period from PeriodSeconds and fills zero values
func (c BucketConf) Normalize() BucketConf {
	if c.Period <= 0 {
		c.Period = time.Duration(c.PeriodSeconds) * time.Second
	}
	if c.Period <= 0 {
		c.Period = time.Minute
	}
	if c.Burst <= 0 {
		c.Burst = 1
	}
	if c.Increment <= 0 {
		c.Increment = 1
	}
	return c
}
