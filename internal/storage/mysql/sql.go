package mysql

// seq is the hotel's first-seen position in the run that last wrote it.
const upsertHotelSQL = `
INSERT INTO hotels
  (id, destination_id, seq, name, description, location, amenities, images, booking_conditions)
VALUES
  (?, ?, ?, ?, ?, ?, ?, ?, ?)
ON DUPLICATE KEY UPDATE
  destination_id     = VALUES(destination_id),
  seq                = VALUES(seq),
  name               = VALUES(name),
  description        = VALUES(description),
  location           = VALUES(location),
  amenities          = VALUES(amenities),
  images             = VALUES(images),
  booking_conditions = VALUES(booking_conditions)
`

// -----------------------------------------------------------------------------
// READ QUERIES
// -----------------------------------------------------------------------------

const selectHotelSQL = `
SELECT
  id,
  destination_id,
  name,
  description,
  location,
  amenities,
  images,
  booking_conditions
FROM hotels`

const getHotelSQL = selectHotelSQL + `
WHERE id = ?`

const listHotelsOrder = `
ORDER BY seq, id`
