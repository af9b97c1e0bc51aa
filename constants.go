package imagehost

const (
	DevelopmentEnvironment = "development"
	ProductionEnvironment  = "production"
)

const imageCollectionName = "images"

// Store drivers accepted by store.driver
const (
	StoreDriverMongodb  = "mongodb"
	StoreDriverPostgres = "postgres"
	StoreDriverSQLite   = "sqlite"
)

// Data URI prefixes of the accepted image encodings
const (
	JPEGPayloadPrefix = "data:image/jpeg;base64,"
	PNGPayloadPrefix  = "data:image/png;base64,"
)
