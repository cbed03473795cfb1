package smiletypes

// BinData is used to hold raw binary blob information for structs that need to support
// encoding to and from SMILE / JSON / BSON. The smile encoder writes this data as a
// tagged binary extension, the json encoder will hexify it for transport, and BSON
// will transform it to a BSON Binary primitive.
type BinData []byte
