package study

// ElisionMarker joins the retained slices of an oversized transcript.
const ElisionMarker = "\n\n[...]\n\n"

// SampleTranscript bounds an oversized transcript before dispatch. When the
// transcript exceeds threshold characters, the beginning, middle, and end
// thirds are kept (proportionally sized so the sample never exceeds the
// threshold) and joined with the elision marker; partial reports whether
// sampling happened. At or under the threshold the transcript is returned
// unchanged.
func SampleTranscript(transcript string, threshold int) (sample string, partial bool) {
	if threshold <= 0 || len(transcript) <= threshold {
		return transcript, false
	}

	per := (threshold - 2*len(ElisionMarker)) / 3
	if per < 1 {
		per = 1
	}

	begin := transcript[:per]

	midStart := len(transcript)/2 - per/2
	if midStart < 0 {
		midStart = 0
	}
	middle := transcript[midStart : midStart+per]

	end := transcript[len(transcript)-per:]

	return begin + ElisionMarker + middle + ElisionMarker + end, true
}
