package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"bazaar/internal/listing"
	"bazaar/internal/messagelog"
	"bazaar/internal/securestore"
)

type listingRepo struct {
	db *sql.DB
}

func (r *listingRepo) Create(ctx context.Context, l listing.Listing) error {
	if l.ID == "" || l.Name == "" || l.Price == "" || l.SellerKey == "" || l.CreatedAt.IsZero() {
		return fmt.Errorf("listing id, name, price, seller_key, and created_at are required")
	}

	_, err := r.db.ExecContext(ctx, `INSERT INTO listings (id, name, price, seller_name, seller_key, wallet_address, image, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		l.ID, l.Name, l.Price, l.SellerName, l.SellerKey, l.WalletAddress, l.Image, l.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert listing: %w", err)
	}
	return nil
}

func (r *listingRepo) GetByID(ctx context.Context, id listing.ID) (listing.Listing, error) {
	row := r.db.QueryRowContext(ctx, `SELECT id, name, price, seller_name, seller_key, wallet_address, image, created_at
		FROM listings WHERE id = $1`, id)
	l, err := scanListing(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return listing.Listing{}, listing.ErrNotFound
		}
		return listing.Listing{}, fmt.Errorf("select listing by id: %w", err)
	}
	return l, nil
}

func (r *listingRepo) List(ctx context.Context, limit int) ([]listing.Listing, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, name, price, seller_name, seller_key, wallet_address, image, created_at
		FROM listings ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	defer rows.Close()

	var listings []listing.Listing
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanListing(row rowScanner) (listing.Listing, error) {
	var l listing.Listing
	var sellerName, walletAddress, image sql.NullString
	if err := row.Scan(&l.ID, &l.Name, &l.Price, &sellerName, &l.SellerKey, &walletAddress, &image, &l.CreatedAt); err != nil {
		return listing.Listing{}, err
	}
	l.SellerName = sellerName.String
	l.WalletAddress = walletAddress.String
	l.Image = image.String
	return l, nil
}

type messageRepo struct {
	db     *sql.DB
	crypto *securestore.FieldCrypto
}

func (r *messageRepo) Append(ctx context.Context, e messagelog.Entry) error {
	if e.ID == "" || e.RoomID == "" || e.Kind == "" || e.SentAt.IsZero() {
		return fmt.Errorf("entry id, room, kind, and sent_at are required")
	}
	if r.crypto == nil {
		return fmt.Errorf("field crypto is required")
	}

	roomKeyEnc, err := r.crypto.EncryptString(string(e.RoomID))
	if err != nil {
		return fmt.Errorf("encrypt room key: %w", err)
	}
	roomNameEnc, err := r.crypto.EncryptString(e.RoomName)
	if err != nil {
		return fmt.Errorf("encrypt room name: %w", err)
	}
	bodyEnc, err := r.crypto.EncryptString(e.Body)
	if err != nil {
		return fmt.Errorf("encrypt body: %w", err)
	}
	fileDataEnc, err := r.crypto.EncryptString(e.FileData)
	if err != nil {
		return fmt.Errorf("encrypt file data: %w", err)
	}
	roomHash := r.crypto.HashString(string(e.RoomID))

	_, err = r.db.ExecContext(ctx, `INSERT INTO log_entries (id, room_hash, room_key_enc, room_name_enc, sender, kind, body_enc, file_data_enc, listing_ref, sent_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		e.ID, roomHash, roomKeyEnc, roomNameEnc, e.Sender, e.Kind, bodyEnc, fileDataEnc, e.ListingRef, e.SentAt)
	if err != nil {
		return fmt.Errorf("insert log entry: %w", err)
	}
	return nil
}

func (r *messageRepo) ListRecent(ctx context.Context, room messagelog.RoomID, limit int) ([]messagelog.Entry, error) {
	if r.crypto == nil {
		return nil, fmt.Errorf("field crypto is required")
	}
	roomHash := r.crypto.HashString(string(room))

	rows, err := r.db.QueryContext(ctx, `SELECT id, room_name_enc, sender, kind, body_enc, file_data_enc, listing_ref, sent_at
		FROM log_entries WHERE room_hash = $1 ORDER BY sent_at DESC LIMIT $2`, roomHash, limit)
	if err != nil {
		return nil, fmt.Errorf("list log entries: %w", err)
	}
	defer rows.Close()

	var entries []messagelog.Entry
	for rows.Next() {
		var e messagelog.Entry
		var roomNameEnc, sender, bodyEnc, fileDataEnc, listingRef sql.NullString
		if err := rows.Scan(&e.ID, &roomNameEnc, &sender, &e.Kind, &bodyEnc, &fileDataEnc, &listingRef, &e.SentAt); err != nil {
			return nil, fmt.Errorf("scan log entry: %w", err)
		}
		e.RoomID = room
		e.Sender = sender.String
		e.ListingRef = listingRef.String
		if e.RoomName, err = r.crypto.DecryptString(roomNameEnc.String); err != nil {
			return nil, fmt.Errorf("decrypt room name: %w", err)
		}
		if e.Body, err = r.crypto.DecryptString(bodyEnc.String); err != nil {
			return nil, fmt.Errorf("decrypt body: %w", err)
		}
		if e.FileData, err = r.crypto.DecryptString(fileDataEnc.String); err != nil {
			return nil, fmt.Errorf("decrypt file data: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate log entries: %w", err)
	}

	// Rows come back newest-first; present them in chronological order.
	for i, j := 0, len(entries)-1; i < j; i, j = i+1, j-1 {
		entries[i], entries[j] = entries[j], entries[i]
	}
	return entries, nil
}
