package scoring

import "math"

// DeviceScores rates how comfortably a model of a given size deploys on each
// hardware class.
type DeviceScores struct {
	RaspberryPi float64 `json:"raspberry_pi"`
	JetsonNano  float64 `json:"jetson_nano"`
	DesktopPC   float64 `json:"desktop_pc"`
	AWSServer   float64 `json:"aws_server"`
}

// deviceCurve is a decay 1/(1+(bytes/capacity)^exponent).
type deviceCurve struct {
	capacity float64
	exponent float64
}

var (
	raspberryPiCurve = deviceCurve{capacity: 180_000_000, exponent: 1.4}
	jetsonNanoCurve  = deviceCurve{capacity: 350_000_000, exponent: 1.4}
	desktopPCCurve   = deviceCurve{capacity: 2_000_000_000, exponent: 1.8}
	awsServerCurve   = deviceCurve{capacity: 4_000_000_000, exponent: 1.8}
)

func (c deviceCurve) score(totalBytes int64) float64 {
	size := math.Max(0, float64(totalBytes))
	ratio := 0.0
	if c.capacity > 0 {
		ratio = size / c.capacity
	}
	return clamp01(1 / (1 + math.Pow(ratio, c.exponent)))
}

// DeviceSizeScores maps artifact size through each device's decay curve.
// It is smoother than SizeScore and reported separately from it.
func DeviceSizeScores(totalBytes int64) DeviceScores {
	return DeviceScores{
		RaspberryPi: raspberryPiCurve.score(totalBytes),
		JetsonNano:  jetsonNanoCurve.score(totalBytes),
		DesktopPC:   desktopPCCurve.score(totalBytes),
		AWSServer:   awsServerCurve.score(totalBytes),
	}
}
