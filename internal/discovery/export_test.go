package discovery

var (
	EncodeEcho      = encodeEcho
	DecodeEchoReply = decodeEchoReply
	HostAnswered    = hostAnswered
)

const BatchSize = batchSize
