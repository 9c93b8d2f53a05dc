package codec_test

import (
	"fmt"
	"log"

	"github.com/rdblue/avro/pkg/codec"
	"github.com/rdblue/avro/pkg/datum"
	"github.com/rdblue/avro/pkg/schema"
	"github.com/rdblue/avro/pkg/stream"
)

// Example_roundTrip builds a schema and a datum, serializes the datum,
// and reads it back under an evolved reader schema.
func Example_roundTrip() {
	writer := schema.NewRecord("User")
	if err := writer.AppendField("name", schema.String()); err != nil {
		log.Fatal(err)
	}
	if err := writer.AppendField("logins", schema.Int()); err != nil {
		log.Fatal(err)
	}
	if _, err := schema.Freeze(writer); err != nil {
		log.Fatal(err)
	}

	user := datum.NewRecord().
		Set("name", datum.String("ada")).
		Set("logins", datum.Int(3))

	out := stream.NewBufferWriter()
	if err := codec.Write(writer, user, out); err != nil {
		log.Fatal(err)
	}
	fmt.Printf("encoded %d bytes\n", len(out.Bytes()))

	// The reader widened logins to a long.
	reader := schema.NewRecord("User")
	if err := reader.AppendField("name", schema.String()); err != nil {
		log.Fatal(err)
	}
	if err := reader.AppendField("logins", schema.Long()); err != nil {
		log.Fatal(err)
	}
	if _, err := schema.Freeze(reader); err != nil {
		log.Fatal(err)
	}

	decoded, err := codec.Read(stream.NewMemoryReader(out.Bytes()), writer, reader)
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(decoded)

	// Output:
	// encoded 5 bytes
	// Record(name: String(ada), logins: Long(3))
}
