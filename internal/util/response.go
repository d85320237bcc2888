package util

type Envelope map[string]any

func Error(message string) Envelope {
	return Envelope{"success": false, "message": message}
}

// Success returns an envelope flagged successful, merged with the given
// key/value pairs.
func Success(fields Envelope) Envelope {
	out := Envelope{"success": true}
	for k, v := range fields {
		out[k] = v
	}
	return out
}

func Data(key string, value any) Envelope {
	return Success(Envelope{key: value})
}
